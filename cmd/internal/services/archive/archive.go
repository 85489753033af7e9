// Package archive импортирует распакованные пакеты извещений в базу данных.
//
// Разбор XML идёт параллельно в пуле воркеров, запись — последовательно
// единственным писателем внутри одной транзакции на пакет: либо пакет
// сохраняется целиком, либо не сохраняется вовсе.
package archive

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	db "github.com/zhukovvlad/tedawards-go/cmd/internal/db/sqlc"

	"github.com/zhukovvlad/tedawards-go/cmd/internal/notices"
	"github.com/zhukovvlad/tedawards-go/cmd/internal/parsers"
	"github.com/zhukovvlad/tedawards-go/cmd/internal/services/loader"
	"github.com/zhukovvlad/tedawards-go/cmd/pkg/logging"
)

// Service импортирует наборы файлов извещений.
type Service struct {
	store   db.Store
	loader  *loader.Service
	logger  *logging.Logger
	workers int
}

// NewService создаёт сервис импорта. workers <= 0 означает "по числу CPU".
func NewService(store db.Store, loaderSvc *loader.Service, logger *logging.Logger, workers int) *Service {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Service{
		store:   store,
		loader:  loaderSvc,
		logger:  logger,
		workers: workers,
	}
}

// ImportFiles разбирает файлы в пуле воркеров и сохраняет все извещения
// в одной транзакции. Возвращает число сохранённых документов.
// Ошибка любого файла (нечитаемый XML, неоднозначная денежная строка)
// откатывает транзакцию целиком.
func (s *Service) ImportFiles(ctx context.Context, files []string) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parsed := make(chan *notices.Notice)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	go func() {
		defer close(parsed)
		for _, file := range files {
			file := file
			g.Go(func() error {
				n, err := parsers.TryParseAward(file)
				if err != nil {
					return fmt.Errorf("parse %s: %w", file, err)
				}
				if n == nil {
					return nil
				}
				select {
				case parsed <- n:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		_ = g.Wait()
	}()

	count := 0
	txErr := s.store.ExecTx(ctx, func(qtx *db.Queries) error {
		for n := range parsed {
			saved, err := s.loader.SaveNotice(ctx, qtx, n)
			if err != nil {
				return fmt.Errorf("save document %s: %w", n.Document.DocID, err)
			}
			if saved {
				count++
			}
		}
		// Транзакция фиксируется только если все воркеры отработали чисто.
		return g.Wait()
	})
	if txErr != nil {
		// Разблокировать воркеров, застрявших на отправке в канал.
		cancel()
		for range parsed {
		}
		return 0, txErr
	}

	return count, nil
}
