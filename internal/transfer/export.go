// Package transfer moves the register in and out of files: CSV reports,
// raw database backups, and spreadsheet imports.
package transfer

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/akyairhashvil/problemtracker/internal/config"
	"github.com/akyairhashvil/problemtracker/internal/models"
	"github.com/akyairhashvil/problemtracker/internal/util"
)

const utf8BOM = "\ufeff"

// ExportSource is the slice of the repository the exporter reads.
type ExportSource interface {
	ListProblems(ctx context.Context) ([]models.Problem, error)
	Serialize(ctx context.Context) ([]byte, error)
}

type Exporter struct {
	src ExportSource
	log *zap.Logger
}

func NewExporter(src ExportSource, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = util.Logger()
	}
	return &Exporter{src: src, log: logger}
}

// WriteCSV writes the report layout: BOM, fixed header, one row per problem.
func WriteCSV(w io.Writer, problems []models.Problem) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(config.CSVHeader); err != nil {
		return err
	}
	for _, p := range problems {
		if err := cw.Write(csvRecord(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(p models.Problem) []string {
	days := "-"
	if n, ok := p.DaysToResolve(); ok {
		days = strconv.Itoa(n)
	}
	return []string{
		p.ProblemNumber,
		p.Entity,
		p.Description,
		localeDate(p.AddedDate),
		localeDate(p.CompletedDate),
		days,
		p.Reporter,
		p.Phone,
		string(p.Status),
	}
}

// localeDate renders en-US M/D/YYYY; absent is "-" and unparseable text is
// written back verbatim.
func localeDate(ts models.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format(config.LocaleDateLayout, ts.Raw)
}

// ExportCSV writes problems_report_<date>.csv into dir and returns its path.
func (e *Exporter) ExportCSV(ctx context.Context, dir string, now time.Time) (string, error) {
	problems, err := e.src.ListProblems(ctx)
	if err != nil {
		return "", fmt.Errorf("export csv: %w", err)
	}
	if len(problems) == 0 {
		return "", ErrNothingToExport
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, problems); err != nil {
		return "", fmt.Errorf("export csv: %w", err)
	}
	path, err := util.WriteFileInDir(dir, util.DatedFileName(config.CSVReportPrefix, now, ".csv"), buf.Bytes())
	if err != nil {
		return "", err
	}
	e.log.Info("csv exported", zap.String("path", path), zap.Int("rows", len(problems)))
	return path, nil
}

// ExportBackup writes the raw database image. A non-empty passphrase seals
// the image and appends .enc to the file name.
func (e *Exporter) ExportBackup(ctx context.Context, dir string, now time.Time, passphrase string) (string, error) {
	image, err := e.src.Serialize(ctx)
	if err != nil {
		return "", fmt.Errorf("export backup: %w", err)
	}
	name := util.DatedFileName(config.BackupPrefix, now, ".db")
	if passphrase != "" {
		if err := util.ValidatePassphrase(passphrase); err != nil {
			return "", err
		}
		sealed, err := util.Seal(passphrase, image)
		if err != nil {
			return "", fmt.Errorf("encrypt backup: %w", err)
		}
		image = sealed
		name += config.EncryptedBackupExt
	}
	path, err := util.WriteFileInDir(dir, name, image)
	if err != nil {
		return "", err
	}
	e.log.Info("backup exported",
		zap.String("path", path),
		zap.Int("bytes", len(image)),
		zap.Bool("encrypted", passphrase != ""))
	return path, nil
}

// ReadBackup loads a backup file for Restore, unsealing it when needed.
func ReadBackup(path, passphrase string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	if !util.IsSealed(data) {
		return data, nil
	}
	if passphrase == "" {
		return nil, ErrPassphraseRequired
	}
	return util.Unseal(passphrase, data)
}
