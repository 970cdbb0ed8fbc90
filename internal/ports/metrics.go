package ports

import "time"

type MediaMetrics interface {
	StreamURLIssued()
	StreamRejected(reason string)
	ViewRecorded()
	ReportComputed(rangeName string, took time.Duration)
}
