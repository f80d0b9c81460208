package fixtures

func pick(a, b int) int {
	return (((a + b)))
}
