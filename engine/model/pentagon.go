package model

// PentagonVertices returns the built-in mesh: a flat pentagon in the XY plane with
// texture coordinates mapping it onto the unit square.
func PentagonVertices() []GPUVertex {
	return []GPUVertex{
		{Position: [3]float32{-0.0868241, 0.49240386, 0.0}, TexCoord: [2]float32{0.4131759, 0.00759614}},
		{Position: [3]float32{-0.49513406, 0.06958647, 0.0}, TexCoord: [2]float32{0.0048659444, 0.43041354}},
		{Position: [3]float32{-0.21918549, -0.44939706, 0.0}, TexCoord: [2]float32{0.28081453, 0.949397}},
		{Position: [3]float32{0.35966998, -0.3473291, 0.0}, TexCoord: [2]float32{0.85967, 0.84732914}},
		{Position: [3]float32{0.44147372, 0.2347359, 0.0}, TexCoord: [2]float32{0.9414737, 0.2652641}},
	}
}

// PentagonIndices returns the three counter-clockwise triangles of the pentagon.
func PentagonIndices() []uint16 {
	return []uint16{
		0, 1, 4,
		1, 2, 4,
		2, 3, 4,
	}
}
