package services

import (
	"bytes"
	"strings"
	"time"

	"orgsite-backend/internal/models"
)

const (
	// DefaultExportTimeLayout is used when no export time format is configured.
	DefaultExportTimeLayout = "2006/1/2 15:04:05"
	// ExportTimeZhTW renders like a zh-TW locale clock, e.g. "2025/6/1 下午6:30:00".
	ExportTimeZhTW = "zh-TW"
)

var exportHeaders = []string{
	"Submitted At",
	"Name",
	"Email",
	"Phone",
	"Nationality",
	"School / Department",
	"Student ID",
	"Status",
}

type exportColumn struct {
	fieldID string
	label   string
}

// exportColumns is the union of answered fields across all rows, in the order
// they first appear; the first label seen becomes the header.
func exportColumns(regs []models.Registration) []exportColumn {
	var cols []exportColumn
	seen := make(map[string]bool)
	for _, reg := range regs {
		for _, r := range reg.CustomResponses {
			if seen[r.FieldID] {
				continue
			}
			seen[r.FieldID] = true
			cols = append(cols, exportColumn{fieldID: r.FieldID, label: r.Label})
		}
	}
	return cols
}

func placeholder(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatSubmittedAt(t time.Time, layout string) string {
	switch layout {
	case "":
		return t.Format(DefaultExportTimeLayout)
	case ExportTimeZhTW:
		half := "上午"
		if t.Hour() >= 12 {
			half = "下午"
		}
		return t.Format("2006/1/2 ") + half + t.Format("3:04:05")
	}
	return t.Format(layout)
}

// BuildRegistrationsCSV renders one row per registration behind a UTF-8 BOM.
// Every cell is quoted and rows end with CRLF. layout is a Go time layout or
// ExportTimeZhTW; empty selects DefaultExportTimeLayout.
func BuildRegistrationsCSV(regs []models.Registration, loc *time.Location, layout string) []byte {
	if loc == nil {
		loc = time.UTC
	}
	cols := exportColumns(regs)

	var buf bytes.Buffer
	buf.WriteString("\uFEFF")

	header := append([]string{}, exportHeaders...)
	for _, c := range cols {
		header = append(header, c.label)
	}
	writeQuotedRow(&buf, header)

	for _, reg := range regs {
		row := []string{
			formatSubmittedAt(reg.SubmittedAt.In(loc), layout),
			reg.Name,
			reg.Email,
			reg.Phone,
			reg.Nationality,
			placeholder(strings.TrimSpace(reg.School + " " + reg.Department)),
			placeholder(reg.StudentID),
			string(reg.Status),
		}
		answers := indexResponses(reg.CustomResponses)
		for _, c := range cols {
			row = append(row, answers[c.fieldID].String())
		}
		writeQuotedRow(&buf, row)
	}
	return buf.Bytes()
}

func writeQuotedRow(buf *bytes.Buffer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteString("\r\n")
}
