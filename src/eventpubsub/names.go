package eventpubsub

const (
	BatchProgressEvent       = "BatchProgressEvent"
	InstrumentCompletedEvent = "InstrumentCompletedEvent"
	FetchRecordedEvent       = "FetchRecordedEvent"
	Error                    = "DefaultError"
)
