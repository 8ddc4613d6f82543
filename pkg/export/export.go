// Package export renders the managed dataset in the formats the admin
// surface offers for download.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nmeo-op/palm-engine/pkg/types"
)

// Filename builds the date-stamped download name for a format
func Filename(ext string, now time.Time) string {
	return fmt.Sprintf("nmeo-dataset-%s.%s", now.Format("2006-01-02"), ext)
}

// JSON renders the snapshot as pretty-printed JSON
func JSON(snap types.DatasetSnapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

// GoSource renders the snapshot as a generated Go source file holding
// the dataset as an embedded JSON literal, the counterpart of the
// dashboard's "export as source module" feature.
func GoSource(snap types.DatasetSnapshot) ([]byte, error) {
	compact, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("// Code generated by palm-engine export. DO NOT EDIT.\n\n")
	buf.WriteString("package staticdata\n\n")
	buf.WriteString("// DatasetJSON is the full NMEO-OP dataset at export time.\n")
	buf.WriteString("const DatasetJSON = " + strconv.Quote(string(compact)) + "\n")
	return buf.Bytes(), nil
}

// Workbook renders the snapshot as an Excel workbook with one sheet of
// region profiles and one sheet of price observations.
func Workbook(snap types.DatasetSnapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	const regionSheet = "Regions"
	if err := f.SetSheetName("Sheet1", regionSheet); err != nil {
		return nil, err
	}
	regionHeader := []interface{}{"ID", "Name", "Potential Area (ha)", "Area Covered (ha)", "OER (%)", "Processing Mills"}
	if err := f.SetSheetRow(regionSheet, "A1", &regionHeader); err != nil {
		return nil, err
	}
	for i, r := range snap.Regions {
		row := []interface{}{r.ID, r.Name, r.PotentialAreaHa, r.AreaCoveredHa, r.OER, r.ProcessingMills}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(regionSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	const priceSheet = "Prices"
	if _, err := f.NewSheet(priceSheet); err != nil {
		return nil, err
	}
	priceHeader := []interface{}{"Region", "Year Type", "Year", "Month", "FFB (₹/MT)", "CPO (₹/MT)"}
	if err := f.SetSheetRow(priceSheet, "A1", &priceHeader); err != nil {
		return nil, err
	}
	for i, obs := range snap.Observations {
		row := []interface{}{obs.Region, string(obs.YearType), obs.Year, obs.Month, cellValue(obs.FFB), cellValue(obs.CPO)}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(priceSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// cellValue keeps absent prices as empty cells instead of zeros
func cellValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
