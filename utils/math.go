package utils

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// SquareInt returns n*n.
func SquareInt(n int) int {
	return n * n
}
