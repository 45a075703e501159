package service

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/fandyandika/miqra/internal/model"
	"github.com/fandyandika/miqra/pkg/logger"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// HasanatPerLetter is the fixed multiplier from letters read to reward
// points.
const HasanatPerLetter = 10

// Bundled subset of the letter-count table; deployments point
// letterCountsPath at the full per-ayah dataset.
//
//go:embed letter_counts.json
var letterCountsJSON []byte

type letterCountsFile struct {
	Data map[string]int `json:"data"`
}

// HasanatService computes local reward previews from a precomputed
// "surah:ayah" -> letter count table. Previews are offline feedback
// only; persisted totals come from the backend.
type HasanatService struct {
	counts map[string]int
}

func NewHasanatService(letterCountsPath string) (*HasanatService, error) {
	raw := letterCountsJSON
	if letterCountsPath != "" {
		b, err := os.ReadFile(letterCountsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read letter counts: %w", err)
		}
		raw = b
	}

	var file letterCountsFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse letter counts: %w", err)
	}

	logger.Logger().Info("letter count table loaded", zap.Int("ayat", len(file.Data)))
	return &HasanatService{counts: file.Data}, nil
}

// PreviewRange sums letters for every ayah in [ayahStart, ayahEnd]
// inclusive. Ayat missing from the table contribute 0 letters; that is
// not an error.
func (s *HasanatService) PreviewRange(surah, ayahStart, ayahEnd int) (*model.HasanatPreview, error) {
	if surah < 1 || ayahStart < 1 || ayahEnd < ayahStart {
		return nil, ErrInvalidRange
	}

	letters := 0
	for ayah := ayahStart; ayah <= ayahEnd; ayah++ {
		letters += s.counts[fmt.Sprintf("%d:%d", surah, ayah)]
	}

	return &model.HasanatPreview{
		Surah:     surah,
		AyahStart: ayahStart,
		AyahEnd:   ayahEnd,
		Letters:   letters,
		Hasanat:   letters * HasanatPerLetter,
	}, nil
}
