package util

import (
	"golang.org/x/exp/slices"
)

func Contains[T comparable](src []T, v T) bool {
	return slices.Contains(src, v)
}

func Distinct[T comparable](src []T) []T {
	seen := make(map[T]bool, len(src))
	out := make([]T, 0, len(src))
	for _, v := range src {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
