package inventory

import (
	"context"
	"errors"

	"github.com/MarcGrol/shopperbot/lib/myerrors"
	"github.com/MarcGrol/shopperbot/lib/mylog"
	"github.com/MarcGrol/shopperbot/services/backend"
	"github.com/MarcGrol/shopperbot/services/chat"
)

const maxFileSize = 10 * 1024 * 1024

type Service struct {
	api     backend.API
	fetcher chat.FileFetcher
	logger  mylog.Logger
}

func NewService(api backend.API, fetcher chat.FileFetcher, logger mylog.Logger) *Service {
	return &Service{
		api:     api,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Upload downloads the document, parses it and forwards the products to the backend on behalf of
// asUsername.
func (s *Service) Upload(c context.Context, asUsername string, doc chat.Document) chat.Reply {
	if doc.Size > maxFileSize {
		return chat.Markdown("❌ *File too large:* please keep inventory files under 10 MB.")
	}

	data, err := s.fetcher.Fetch(c, doc.FileID)
	if err != nil {
		s.logger.Log(c, asUsername, mylog.SeverityWarn, "Error downloading %s: %s", doc.FileName, err)
		return chat.Text("❌ Error downloading %s. Please send it again.", doc.FileName)
	}

	result, err := Parse(doc.FileName, data)
	if err != nil {
		s.logger.Log(c, asUsername, mylog.SeverityInfo, "Rejected inventory file %s: %s", doc.FileName, err)
		if myerrors.IsInvalidInput(err) {
			return chat.Text("❌ %s", unwrapMessage(err))
		}
		return chat.ErrorReply(err, "reading the inventory file")
	}

	counts, err := s.api.BulkUpsertProducts(c, asUsername, result.Products)
	if err != nil {
		s.logger.Log(c, asUsername, mylog.SeverityWarn, "Error uploading %d products: %s", len(result.Products), err)
		return chat.ErrorReply(err, "uploading inventory")
	}

	s.logger.Log(c, asUsername, mylog.SeverityInfo, "Uploaded %s: added %d, updated %d, skipped %d", doc.FileName, counts.Added, counts.Updated, result.Skipped)

	return chat.Markdown("✅ *Bulk Upload Success!*\n\n"+
		"🆕 Added: %d\n"+
		"🔄 Updated: %d\n"+
		"⏭️ Skipped: %d\n"+
		"📦 Total Processed: %d", counts.Added, counts.Updated, result.Skipped, len(result.Products))
}

func unwrapMessage(err error) string {
	if inner := errors.Unwrap(err); inner != nil {
		return inner.Error()
	}
	return err.Error()
}
