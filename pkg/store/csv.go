package store

import (
	"encoding/csv"
	"os"

	"bankmatch/pkg/domain"
)

var csvHeader = []string{"date", "account_from", "account_to", "amount", "currency", "description"}

type CSVFile struct {
	filename string
}

func NewCSVFile(filename string) Store {
	return &CSVFile{filename: filename}
}

func (f *CSVFile) Write(txns []domain.Transaction) error {
	file, err := os.Create(f.filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range records(txns) {
		row := []string{r.Date, r.AccountFrom, r.AccountTo, r.Amount, r.Currency, r.Description}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}
