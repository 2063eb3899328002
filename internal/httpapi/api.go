package httpapi

import (
	"log/slog"

	"kdrama-dashboard/internal/dataset"
	"kdrama-dashboard/internal/logging"
	"kdrama-dashboard/internal/quiz"
)

type API struct {
	service *quiz.Service
	data    *dataset.Dataset
	logger  *slog.Logger
}

func NewAPI(service *quiz.Service, data *dataset.Dataset, logger *slog.Logger) *API {
	if data == nil {
		data = dataset.New(nil)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &API{
		service: service,
		data:    data,
		logger:  logger,
	}
}
