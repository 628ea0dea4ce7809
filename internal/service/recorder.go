package service

// Recorder receives pipeline observations. *metrics.Metrics implements it.
type Recorder interface {
	ObserveMutation(entity, outcome string)
	ObserveChange()
	ObserveWrite(err error)
	ObservePolicyLookup(cached bool)
}

type noopRecorder struct{}

func (noopRecorder) ObserveMutation(string, string) {}
func (noopRecorder) ObserveChange() {}
func (noopRecorder) ObserveWrite(error) {}
func (noopRecorder) ObservePolicyLookup(bool) {}

func orNoop(rec Recorder) Recorder {
	if rec == nil {
		return noopRecorder{}
	}
	return rec
}
