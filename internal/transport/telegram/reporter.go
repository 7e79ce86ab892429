package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/reshetovitsme/tweet-media-relay/internal/modules/delivery/domain"
	"github.com/samber/oops"
)

const (
	errorReportFilename = "error_report.txt"
	errorReportCaption  = "#error_report\nAn exception was raised during runtime\n"
)

// Reporter turns pipeline failures into a diagnostic document for the
// developer and a short notice for the user who triggered them.
type Reporter struct {
	sender      domain.Sender
	developerID int64
}

// NewReporter creates a new error reporter
func NewReporter(sender domain.Sender, developerID int64) *Reporter {
	return &Reporter{
		sender:      sender,
		developerID: developerID,
	}
}

// Report is used as the worker pool error hook.
func (r *Reporter) Report(ctx context.Context, job Job, err error) {
	in := job.Inbound
	logger := slog.With("chat_id", in.ChatID, "message_id", in.MessageID)
	logger.Error("Exception while handling an update", "error", err, "stacktrace", stacktrace(err))

	// The pipeline context may already be cancelled; the report must still go out.
	ctx = context.WithoutCancel(ctx)

	logger.Info("Sending error report")
	report := domain.Attachment{
		Kind:     domain.AttachmentKindDocument,
		Upload:   bytes.NewReader(buildReport(job, err)),
		Filename: errorReportFilename,
		Caption:  errorReportCaption,
	}
	if sendErr := r.sender.SendAttachment(ctx, r.developerID, report); sendErr != nil {
		logger.Error("Failed to send error report", "error", sendErr)
	}

	notice := fmt.Sprintf("Error\n%s: %s", errorCategory(err), err.Error())
	if _, sendErr := r.sender.SendText(ctx, in.ChatID, notice, in.MessageID); sendErr != nil {
		logger.Error("Failed to send error notice", "error", sendErr)
	}
}

func buildReport(job Job, err error) []byte {
	var b strings.Builder

	update, marshalErr := json.MarshalIndent(job.Update, "", "  ")
	if marshalErr != nil {
		update = []byte(fmt.Sprintf("%+v", job.Inbound))
	}
	fmt.Fprintf(&b, "update = %s\n\n", update)
	fmt.Fprintf(&b, "error = %s\n\n", err.Error())
	b.WriteString(stacktrace(err))

	return []byte(b.String())
}

func stacktrace(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Stacktrace()
	}
	return ""
}

// errorCategory names the innermost error type, e.g. "*url.Error".
func errorCategory(err error) string {
	root := err
	for {
		next := stderrors.Unwrap(root)
		if next == nil {
			break
		}
		root = next
	}
	return fmt.Sprintf("%T", root)
}
