package analysis

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/shopspring/decimal"
)

//go:embed historical_draws.json
var historicalDrawsJSON []byte

// Draw is one historical drawing.
type Draw struct {
	Date      string          `json:"date"`
	Numbers   []int           `json:"numbers"`
	Powerball int             `json:"powerball"`
	Jackpot   decimal.Decimal `json:"jackpot"`
}

type drawFile struct {
	Draws []Draw `json:"draws"`
}

// DefaultDraws returns the built-in sample of historical drawings.
func DefaultDraws() []Draw {
	draws, err := parseDraws(historicalDrawsJSON)
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded historical draws: %v", err))
	}
	return draws
}

// LoadDraws reads drawings from a JSON file holding either {"draws": [...]}
// or a bare array.
func LoadDraws(path string) ([]Draw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read draws: %w", err)
	}
	draws, err := parseDraws(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return draws, nil
}

func parseDraws(data []byte) ([]Draw, error) {
	var draws []Draw
	var wrapped drawFile
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Draws != nil {
		draws = wrapped.Draws
	} else if err := json.Unmarshal(data, &draws); err != nil {
		return nil, fmt.Errorf("parse draws: %w", err)
	}

	if len(draws) == 0 {
		return nil, errors.New("no draws")
	}
	for i := range draws {
		if len(draws[i].Numbers) == 0 {
			return nil, fmt.Errorf("draw %d (%s): no numbers", i, draws[i].Date)
		}
		if draws[i].Powerball < 1 {
			return nil, fmt.Errorf("draw %d (%s): invalid powerball %d", i, draws[i].Date, draws[i].Powerball)
		}
		slices.Sort(draws[i].Numbers)
	}
	return draws, nil
}
