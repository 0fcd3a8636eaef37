// Package export renders materialized meeting conversations as spreadsheets.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-enrichment/internal/domain/entities"
	"github.com/johnquangdev/meeting-enrichment/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/meeting-enrichment/internal/usecase/errors"
)

// SheetName is the worksheet holding the conversation timeline
const SheetName = "Conversation"

const summaryLabel = "Summary"

var header = []interface{}{"Sequence", "Offset (s)", "Speaker", "User ID", "Text"}

// Exporter loads a finished meeting and writes its conversation as xlsx
type Exporter struct {
	store  repositories.Store
	logger *zap.Logger
}

// NewExporter creates an exporter over store
func NewExporter(store repositories.Store, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{store: store, logger: logger}
}

// Export writes the conversation of meeting id to w. Only meetings whose
// eighth stage has completed can be exported.
func (e *Exporter) Export(ctx context.Context, id uuid.UUID, w io.Writer) (int, error) {
	meeting, err := e.store.Meetings().FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if meeting == nil {
		return 0, usecaseErrors.ErrMeetingNotFound
	}
	status, err := entities.ParseMeetingStatus(string(meeting.Status))
	if err != nil {
		return 0, err
	}
	if status != entities.MeetingStatusStep8Completed {
		return 0, &usecaseErrors.NotReadyError{Status: string(status)}
	}

	rows, err := e.store.Conversations().ListByMeeting(ctx, id)
	if err != nil {
		return 0, err
	}
	speakers, err := e.store.Speakers().ListByMeeting(ctx, id)
	if err != nil {
		return 0, err
	}

	names := make(map[uint]string, len(speakers))
	for _, s := range speakers {
		names[s.ID] = s.SpeakerName
	}

	if err := WriteConversation(w, rows, names); err != nil {
		return 0, err
	}

	e.logger.Info("📄 Conversation exported",
		zap.String("meeting_id", id.String()),
		zap.Int("rows", len(rows)),
	)
	return len(rows), nil
}

// WriteConversation writes rows to w as a single-sheet workbook. Speaker
// ids missing from names are written as-is; summary rows are labelled.
func WriteConversation(w io.Writer, rows []*entities.ConversationSegment, names map[uint]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{row.Sequence, row.OffsetSeconds, speakerLabel(row, names), row.UserID, row.Text}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(SheetName, "C", "C", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "E", "E", 100); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func speakerLabel(row *entities.ConversationSegment, names map[uint]string) string {
	if row.IsSummary() {
		return summaryLabel
	}
	if name, ok := names[row.SpeakerID]; ok {
		return name
	}
	return fmt.Sprintf("#%d", row.SpeakerID)
}
