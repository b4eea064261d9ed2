package csvresync

// PlanSegments maps a file length and thread count to a sequence of
// candidate split offsets. For threads < 2 it returns a single candidate,
// byte 0. Otherwise offset_i = floor((i / threads) * fileLen), with
// offset_0 = 0. Offsets are monotonically non-decreasing; duplicates are
// possible for tiny files and are left for the driver to collapse into
// empty segments.
func PlanSegments(fileLen int64, threads int) []int64 {
	if threads < 2 {
		return []int64{0}
	}

	offsets := make([]int64, threads)
	for i := 0; i < threads; i++ {
		offsets[i] = int64((int64(i) * fileLen) / int64(threads))
	}
	return offsets
}
