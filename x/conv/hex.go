package conv

const hexd = "0123456789ABCDEF"

// AppendHexUpper appends src as uppercase hex, two digits per byte,
// no 0x prefix. No allocations beyond dst growth.
func AppendHexUpper(dst []byte, src []byte) []byte {
	for _, b := range src {
		dst = append(dst, hexd[b>>4], hexd[b&0xF])
	}
	return dst
}
