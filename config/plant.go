package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/h2steel/flexbatch/core/plant"
)

// LoadPlant reads the plant description named by the config and applies
// the CSV series overrides. The result is validated.
func LoadPlant(cfg *Config) (*plant.Params, error) {
	k := koanf.New(".")
	parser, err := parserFor(cfg.PlantFile)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(cfg.PlantFile), parser); err != nil {
		return nil, fmt.Errorf("load plant file: %w", err)
	}
	var p plant.Params
	if err := k.UnmarshalWithConf("", &p, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("parse plant file: %w", err)
	}

	if cfg.Series.PriceFile != "" {
		p.PriceEURPerMWh, err = LoadSeries(cfg.Series.PriceFile)
		if err != nil {
			return nil, fmt.Errorf("load price series: %w", err)
		}
	}
	if cfg.Series.GenerationFile != "" {
		p.GenerationMW, err = LoadSeries(cfg.Series.GenerationFile)
		if err != nil {
			return nil, fmt.Errorf("load generation series: %w", err)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadSeries reads a single-column CSV time series, one value per row. A
// non-numeric first row is treated as a header and skipped.
func LoadSeries(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readSeries(f)
}

func readSeries(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	var out []float64
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			if row == 0 {
				continue
			}
			return nil, fmt.Errorf("row %d: %w", row+1, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("series is empty")
	}
	return out, nil
}
