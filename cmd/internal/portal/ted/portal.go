// Package ted работает с порталом публикаций TED: скачивает ежедневные
// пакеты извещений и передаёт распакованные файлы на импорт.
//
// Номер пакета строится как year*100000 + номер выпуска Официального
// журнала, например 202500002 — второй выпуск 2025 года.
package ted

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/zhukovvlad/tedawards-go/cmd/internal/services/archive"
	"github.com/zhukovvlad/tedawards-go/cmd/pkg/logging"
)

const (
	packageURLFormat = "https://ted.europa.eu/packages/daily/%09d"

	// Выпуски журнала идут подряд; после этого числа подряд идущих 404
	// считаем, что год закончился.
	maxConsecutive404s = 10
)

// Portal скачивает и импортирует пакеты TED.
type Portal struct {
	dataDir  string
	maxIssue int
	client   *http.Client
	limiter  *rate.Limiter
	importer *archive.Service
	logger   *logging.Logger
}

// New создаёт портал. rps ограничивает частоту запросов к TED.
func New(dataDir string, maxIssue int, rps float64, importer *archive.Service, logger *logging.Logger) *Portal {
	if maxIssue <= 0 {
		maxIssue = 300
	}
	if rps <= 0 {
		rps = 2
	}
	return &Portal{
		dataDir:  dataDir,
		maxIssue: maxIssue,
		client:   &http.Client{Timeout: 60 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		importer: importer,
		logger:   logger,
	}
}

// PackageNumber возвращает номер пакета TED по году и номеру выпуска.
func PackageNumber(year, issue int) int {
	return year*100000 + issue
}

func packageString(packageNumber int) string {
	return fmt.Sprintf("%09d", packageNumber)
}

// DownloadPackage скачивает и распаковывает один ежедневный пакет.
// Возвращает false, если пакета не существует (404).
func (p *Portal) DownloadPackage(ctx context.Context, packageNumber int) (bool, error) {
	pkg := packageString(packageNumber)
	extractDir := filepath.Join(p.dataDir, pkg)

	if files, _ := listFiles(extractDir); len(files) > 0 {
		p.logger.Infof("Package %s: already downloaded", pkg)
		return true, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return false, err
	}

	p.logger.Infof("Package %s: downloading", pkg)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(packageURLFormat, packageNumber), nil)
	if err != nil {
		return false, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("download package %s: %w", pkg, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		p.logger.Infof("Package %s: not found", pkg)
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("download package %s: unexpected status %s", pkg, resp.Status)
	}

	if err := extractTarGz(resp.Body, extractDir); err != nil {
		return false, fmt.Errorf("extract package %s: %w", pkg, err)
	}

	return true, nil
}

// extractTarGz распаковывает поток tar.gz в dir, отбрасывая небезопасные
// пути с выходом за пределы каталога.
func extractTarGz(r io.Reader, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target := filepath.Join(dir, filepath.Clean(hdr.Name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			fd, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if err != nil {
				return err
			}
			if _, err := io.Copy(fd, tr); err != nil {
				fd.Close()
				return err
			}
			if err := fd.Close(); err != nil {
				return err
			}
		}
	}
}

// DownloadYear скачивает пакеты года, пока не упрётся в серию 404.
func (p *Portal) DownloadYear(ctx context.Context, year int) error {
	p.logger.Infof("Downloading TED packages for year %d (issues 1-%d, stopping after %d consecutive 404s)",
		year, p.maxIssue, maxConsecutive404s)

	totalDownloaded := 0
	consecutive404s := 0

	for issue := 1; issue <= p.maxIssue; issue++ {
		ok, err := p.DownloadPackage(ctx, PackageNumber(year, issue))
		if err != nil {
			return err
		}
		if !ok {
			consecutive404s++
			if consecutive404s >= maxConsecutive404s {
				p.logger.Infof("Stopping after %d consecutive 404s at issue %d", maxConsecutive404s, issue)
				break
			}
			continue
		}
		consecutive404s = 0
		totalDownloaded++
	}

	p.logger.Infof("Year %d: Downloaded %d packages", year, totalDownloaded)
	return nil
}

// DownloadedPackages возвращает отсортированные номера скачанных пакетов года.
func (p *Portal) DownloadedPackages(year int) ([]int, error) {
	entries, err := os.ReadDir(p.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var packages []int
	for _, entry := range entries {
		if !entry.IsDir() || len(entry.Name()) != 9 {
			continue
		}
		num, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		if num/100000 == year {
			packages = append(packages, num)
		}
	}
	sort.Ints(packages)
	return packages, nil
}

// PackageFiles возвращает XML-файлы распакованного пакета,
// nil — если пакет не скачан.
func (p *Portal) PackageFiles(packageNumber int) ([]string, error) {
	extractDir := filepath.Join(p.dataDir, packageString(packageNumber))
	files, err := listFiles(extractDir)
	if err != nil {
		return nil, err
	}

	var xmlFiles []string
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f), ".xml") {
			xmlFiles = append(xmlFiles, f)
		}
	}
	return xmlFiles, nil
}

func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return files, nil
}

// ImportPackage импортирует один скачанный пакет в одной транзакции.
// Возвращает число сохранённых извещений.
func (p *Portal) ImportPackage(ctx context.Context, packageNumber int) (int, error) {
	files, err := p.PackageFiles(packageNumber)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		p.logger.Warnf("Package %s not found in %s", packageString(packageNumber), p.dataDir)
		return 0, nil
	}

	count, err := p.importer.ImportFiles(ctx, files)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		p.logger.Infof("Package %s: Imported %d award notices", packageString(packageNumber), count)
	}
	return count, nil
}

// ImportYear импортирует все скачанные пакеты года.
func (p *Portal) ImportYear(ctx context.Context, year int) error {
	packages, err := p.DownloadedPackages(year)
	if err != nil {
		return err
	}
	if len(packages) == 0 {
		p.logger.Warnf("No downloaded packages found for year %d", year)
		return nil
	}

	p.logger.Infof("Importing %d packages for year %d", len(packages), year)

	totalImported := 0
	for _, packageNumber := range packages {
		count, err := p.ImportPackage(ctx, packageNumber)
		if err != nil {
			return err
		}
		totalImported += count
	}

	p.logger.Infof("Year %d: Imported %d total award notices", year, totalImported)
	return nil
}
