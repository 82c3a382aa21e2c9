package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// evalLog records one CSV row per evaluation. Its columns follow the
// parameter vector, so rows are built by hand rather than from a struct.
type evalLog struct {
	f *os.File
	w *csv.Writer
}

func createEvalLog(path string, params *ParamVector) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating evaluation log: %w", err)
	}
	l := &evalLog{f: f, w: csv.NewWriter(f)}

	header := []string{"eval", "fitness", "mean_duration", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := l.w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	return l, nil
}

// Append writes a row and flushes it, so an interrupted run keeps its log.
func (l *evalLog) Append(eval int, fitness, mean, quality float64, raw []float64) error {
	row := []string{
		strconv.Itoa(eval),
		strconv.FormatFloat(fitness, 'f', 3, 64),
		strconv.FormatFloat(mean, 'f', 1, 64),
		strconv.FormatFloat(quality, 'f', 3, 64),
	}
	for _, v := range raw {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := l.w.Write(row); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}

func (l *evalLog) Close() error {
	l.w.Flush()
	return errors.Join(l.w.Error(), l.f.Close())
}
