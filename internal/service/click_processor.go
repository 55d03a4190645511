package service

import (
	"context"
	"sync"
	"time"

	"github.com/SergeiKhy/shortlink/internal/models"
	"github.com/SergeiKhy/shortlink/internal/repository"
	"go.uber.org/zap"
)

// Константы worker pool
const (
	defaultWorkerCount   = 3    // Количество воркеров
	defaultChannelBuffer = 1000 // Размер буфера канала
)

// ClickProcessor асинхронная запись кликов: fire-and-forget относительно
// пути редиректа. Ошибки записи уходят в лог и никогда — клиенту.
type ClickProcessor interface {
	Start()
	Stop()
	RecordClick(ctx context.Context, event *models.ClickEvent) error
}

type clickProcessor struct {
	clickRepo    repository.ClickRepository
	logger       *zap.Logger
	clickChannel chan *models.ClickEvent
	workerCount  int
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewClickProcessor создаёт новый экземпляр процессора кликов.
func NewClickProcessor(clickRepo repository.ClickRepository, logger *zap.Logger) ClickProcessor {
	return &clickProcessor{
		clickRepo:    clickRepo,
		logger:       logger,
		clickChannel: make(chan *models.ClickEvent, defaultChannelBuffer),
		workerCount:  defaultWorkerCount,
	}
}

// Start запускает worker pool.
func (p *clickProcessor) Start() {
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.logger.Info("Запуск воркеров процессора кликов", zap.Int("count", p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop корректно останавливает worker pool.
func (p *clickProcessor) Stop() {
	p.logger.Info("Остановка процессора кликов...")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("Процессор кликов остановлен")
}

// worker обрабатывает события кликов из канала.
func (p *clickProcessor) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("Воркер кликов запущен", zap.Int("id", id))

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("Воркер кликов остановлен", zap.Int("id", id))
			return

		case event, ok := <-p.clickChannel:
			if !ok {
				return
			}
			p.processClick(event)
		}
	}
}

// processClick записывает одно событие. Ровно одна попытка, без ретраев;
// ошибка уходит в лог.
func (p *clickProcessor) processClick(event *models.ClickEvent) {
	ctx, cancel := context.WithTimeout(p.ctx, 5*time.Second)
	defer cancel()

	click := &models.Click{
		LinkID:    event.LinkID,
		ShortCode: event.ShortCode,
		City:      event.City,
		Country:   event.Country,
		Region:    event.Region,
		Timezone:  event.Timezone,
		Latitude:  event.Latitude,
		Longitude: event.Longitude,
		ClickedAt: time.Now(),
	}

	if err := p.clickRepo.RecordClick(ctx, click); err != nil {
		p.logger.Error("Не удалось записать клик",
			zap.String("short_code", event.ShortCode),
			zap.String("link_id", event.LinkID),
			zap.Error(err),
		)
	}
}

// RecordClick отправляет событие в worker pool, не блокируя редирект.
// Событие без географического контекста пропускается целиком: частично
// заполненные строки засоряют агрегаты null-измерениями.
func (p *clickProcessor) RecordClick(ctx context.Context, event *models.ClickEvent) error {
	if !event.HasGeoContext() {
		p.logger.Info("Клик пропущен: нет географического контекста",
			zap.String("short_code", event.ShortCode),
		)
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.clickChannel <- event:
		return nil
	default:
		// Канал заполнен — событие теряем, запрос не задерживаем
		p.logger.Warn("Буфер канала кликов заполнен, событие потеряно",
			zap.String("short_code", event.ShortCode),
		)
		return nil
	}
}
