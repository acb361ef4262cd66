package xbase

import "fmt"

// compareBytes reports per-offset differences between a and b, adapted
// from the teacher's dbf_test.go CompareBytes helper: each entry is
// [offset, a-value, b-value], with -1 standing in for "no byte at this
// offset" when the slices differ in length.
func compareBytes(a, b []byte) [][3]int {
	var diffs [][3]int
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		if a[i] != b[i] {
			diffs = append(diffs, [3]int{i, int(a[i]), int(b[i])})
		}
	}
	if len(a) > minLen {
		for i := minLen; i < len(a); i++ {
			diffs = append(diffs, [3]int{i, int(a[i]), -1})
		}
	} else if len(b) > minLen {
		for i := minLen; i < len(b); i++ {
			diffs = append(diffs, [3]int{i, -1, int(b[i])})
		}
	}
	return diffs
}

func formatDiffs(diffs [][3]int) string {
	s := ""
	for _, d := range diffs {
		s += fmt.Sprintf("  offset %d: got %d want %d\n", d[0], d[1], d[2])
	}
	return s
}
