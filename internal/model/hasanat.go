package model

// HasanatPreview is the locally computed reward estimate for an ayah
// range. The authoritative total lives server-side; this exists so the
// UI can show a number before the write round-trips.
type HasanatPreview struct {
	Surah     int `json:"surah"`
	AyahStart int `json:"ayah_start"`
	AyahEnd   int `json:"ayah_end"`
	Letters   int `json:"letters"`
	Hasanat   int `json:"hasanat"`
}
