// Package export renders resolved review orders as xlsx workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"linkdesk-backend/internal/badges"
	"linkdesk-backend/internal/models"
	"linkdesk-backend/internal/slots"
)

const (
	ReviewSheet     = "Review"
	UnassignedSheet = "Unassigned"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	reviewHeaders     = []string{"Client", "Slot", "Target Page", "Anchor Text", "Domain", "Status", "Pool", "Rank", "Price", "Available", "Notes"}
	unassignedHeaders = []string{"Client", "Domain", "Status", "Pool", "Rank", "Price", "Notes"}
)

// Workbook builds the review workbook: one row per slot on the review sheet
// and one row per submission without a target page on the unassigned sheet.
func Workbook(resolved *slots.ResolvedOrder) (*excelize.File, error) {
	if resolved == nil {
		return nil, slots.ErrMalformedOrder
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ReviewSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name review sheet: %w", err)
	}
	if _, err := f.NewSheet(UnassignedSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create unassigned sheet: %w", err)
	}

	if err := writeRow(f, ReviewSheet, 1, toCells(reviewHeaders)); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRow(f, UnassignedSheet, 1, toCells(unassignedHeaders)); err != nil {
		f.Close()
		return nil, err
	}

	reviewRow, unassignedRow := 2, 2
	for _, g := range resolved.Groups {
		client := clientName(g)

		for _, slot := range g.Slots {
			cells := []interface{}{client, slot.Index + 1, slot.TargetPageURL, slot.AnchorText}
			cells = append(cells, submissionCells(slot.DisplaySubmission)...)
			cells = append(cells, len(slot.AvailableForTarget), notes(slot.DisplaySubmission))
			if err := writeRow(f, ReviewSheet, reviewRow, cells); err != nil {
				f.Close()
				return nil, err
			}
			reviewRow++
		}

		for _, sub := range g.Unassigned {
			cells := []interface{}{client}
			cells = append(cells, submissionCells(sub)...)
			cells = append(cells, sub.Notes)
			if err := writeRow(f, UnassignedSheet, unassignedRow, cells); err != nil {
				f.Close()
				return nil, err
			}
			unassignedRow++
		}
	}

	return f, nil
}

// Render returns the workbook as xlsx bytes.
func Render(resolved *slots.ResolvedOrder) ([]byte, error) {
	f, err := Workbook(resolved)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// submissionCells is Domain, Status, Pool, Rank, Price. An empty slot gets
// blanks so later columns stay aligned.
func submissionCells(sub *models.SiteSubmission) []interface{} {
	if sub == nil {
		return []interface{}{"", "", "", "", ""}
	}
	return []interface{}{
		sub.DomainName(),
		badges.ForSubmission(sub).Label,
		string(sub.SelectionPool),
		sub.Rank(),
		sub.Price,
	}
}

func notes(sub *models.SiteSubmission) string {
	if sub == nil {
		return ""
	}
	return sub.Notes
}

func clientName(g slots.ResolvedGroup) string {
	if g.Group == nil {
		return ""
	}
	if g.Group.Client.Name != "" {
		return g.Group.Client.Name
	}
	return g.Group.Client.Website
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
