package fields

import (
	"errors"
	"fmt"

	"logsynth/internal/data"
)

// dataColumn replays one column of a CSV or JSON row file.
type dataColumn struct {
	src    *data.Source
	column string
}

func newData(cfg Config, env Env) (Generator, error) {
	file, err := cfg.String("file", "")
	if err != nil {
		return nil, err
	}
	if file == "" {
		return nil, errors.New(`"file" is required`)
	}
	modeName, err := cfg.String("mode", "")
	if err != nil {
		return nil, err
	}
	mode, err := data.ParseMode(modeName)
	if err != nil {
		return nil, err
	}
	src, err := data.LoadFile(file, mode, env.BaseDir, env.Rand)
	if err != nil {
		return nil, err
	}

	column, err := cfg.String("column", "")
	if err != nil {
		return nil, err
	}
	switch {
	case column == "" && len(src.Columns()) == 1:
		column = src.Columns()[0]
	case column == "":
		return nil, fmt.Errorf(`"column" is required when %s has %d columns`, file, len(src.Columns()))
	case !src.HasColumn(column):
		return nil, fmt.Errorf("column %q not found in %s", column, file)
	}
	return &dataColumn{src: src, column: column}, nil
}

func (d *dataColumn) Generate() any { return d.src.Next()[d.column] }

func (d *dataColumn) Reset() { d.src.Reset() }
