package fixtures

func accumulate(total int, values []int) int {
	total = total
	for _, v := range values {
		total += v
	}
	return total
}
