package audit

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/frahmantamala/ldc-construction/internal"
	auditDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/audit"
	"github.com/xuri/excelize/v2"
)

type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", internal.NewValidationError("format must be csv or xlsx", internal.ErrCodeInvalidFilter)
	}
}

func (f ExportFormat) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

type ExportResult struct {
	Filename    string
	ContentType string
	Count       int
	Data        []byte
}

const exportSheet = "Audit Logs"

var exportHeader = []string{
	"Timestamp", "User Name", "User Email", "User Role", "Action", "Resource", "Resource ID",
	"From CG Code", "From CG Name", "To CG Code", "To CG Name", "IP Address", "User Agent", "Metadata",
}

func exportRow(l *auditDatamodel.AuditLog) []string {
	var name, email, role string
	if l.User != nil {
		name, email, role = l.User.Name, l.User.Email, l.User.Role
	}
	var fromCode, fromName, toCode, toName string
	if cg := l.FromConstructionGroup; cg != nil {
		fromCode, fromName = cg.Code, cg.Name
	}
	if cg := l.ToConstructionGroup; cg != nil {
		toCode, toName = cg.Code, cg.Name
	}
	var metadata string
	if len(l.Metadata) > 0 {
		if b, err := json.Marshal(l.Metadata); err == nil {
			metadata = string(b)
		}
	}
	return []string{
		l.CreatedAt.UTC().Format(time.RFC3339),
		name, email, role,
		l.Action, l.Resource, value(l.ResourceID),
		fromCode, fromName, toCode, toName,
		value(l.IPAddress), value(l.UserAgent),
		metadata,
	}
}

// Render writes rows in the requested format. The filename carries the
// export date.
func Render(rows []*auditDatamodel.AuditLog, format ExportFormat, at time.Time) (*ExportResult, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatXLSX:
		data, err = renderXLSX(rows)
	default:
		format = FormatCSV
		data, err = renderCSV(rows)
	}
	if err != nil {
		return nil, internal.NewInternalError("failed to render audit export", err)
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("audit-logs-%s.%s", at.Format("2006-01-02"), format),
		ContentType: format.ContentType(),
		Count:       len(rows),
		Data:        data,
	}, nil
}

func renderCSV(rows []*auditDatamodel.AuditLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, l := range rows {
		if err := w.Write(exportRow(l)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(rows []*auditDatamodel.AuditLog) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	writeRow := func(n int, cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, n)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(cells))
		for i, c := range cells {
			values[i] = c
		}
		return f.SetSheetRow(exportSheet, cell, &values)
	}

	if err := writeRow(1, exportHeader); err != nil {
		return nil, err
	}
	for i, l := range rows {
		if err := writeRow(i+2, exportRow(l)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
