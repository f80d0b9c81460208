package fixtures

func area(w, h int) int {
	return ((w * h))
}
