package app

import (
	"context"
	"time"

	"github.com/Charvyearl/cashless/internal/domain"
)

// CardReader is the card-reader collaborator contract: it returns the most
// recently observed scan.
type CardReader interface {
	LatestScan(ctx context.Context) (domain.CardScan, error)
}

// ScanService gates reader output by freshness so a scan left over from a
// previous customer is never acted on.
type ScanService struct {
	reader CardReader
}

func NewScanService(reader CardReader) *ScanService {
	return &ScanService{reader: reader}
}

// LatestScan returns the reader's most recent scan. Scans taken before
// notBefore (the start of the current scan attempt) are discarded.
func (s *ScanService) LatestScan(ctx context.Context, notBefore time.Time) (domain.CardScan, error) {
	scan, err := s.reader.LatestScan(ctx)
	if err != nil {
		return domain.CardScan{}, err
	}
	if scan.ScannedAt.Before(notBefore) {
		return domain.CardScan{}, domain.ErrStaleScan
	}
	return scan, nil
}
