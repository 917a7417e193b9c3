package mathx

// Scale maps x in [inMin,inMax] to [outMin,outMax] with 64-bit
// intermediates, rounding toward outMin. Inputs outside the in range
// clamp to the out range.
func Scale(x, inMin, inMax, outMin, outMax int) int {
	if inMax == inMin {
		return outMin
	}
	if x <= inMin {
		return outMin
	}
	if x >= inMax {
		return outMax
	}
	num := int64(x-inMin) * int64(outMax-outMin)
	den := int64(inMax - inMin)
	return outMin + int(num/den)
}
