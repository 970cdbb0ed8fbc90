package domain

import (
	"time"

	"github.com/Vovarama1992/mediavault/internal/ports"
)

type noopMetrics struct{}

func (noopMetrics) StreamURLIssued() {}
func (noopMetrics) StreamRejected(string) {}
func (noopMetrics) ViewRecorded() {}
func (noopMetrics) ReportComputed(string, time.Duration) {}

func metricsOrNoop(m ports.MediaMetrics) ports.MediaMetrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
