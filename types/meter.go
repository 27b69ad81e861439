package types

type ReadingContext string

const (
	ReadingContextSamplePeriodic   ReadingContext = "Sample.Periodic"
	ReadingContextSampleClock      ReadingContext = "Sample.Clock"
	ReadingContextTransactionBegin ReadingContext = "Transaction.Begin"
	ReadingContextTransactionEnd   ReadingContext = "Transaction.End"
	ReadingContextTrigger          ReadingContext = "Trigger"
)

const MeasurandEnergyActiveImportRegister = "Energy.Active.Import.Register"

type SampledValue struct {
	Value     string `json:"value"`
	Context   string `json:"context,omitempty"`
	Format    string `json:"format,omitempty"`
	Measurand string `json:"measurand,omitempty"`
	Phase     string `json:"phase,omitempty"`
	Location  string `json:"location,omitempty"`
	Unit      string `json:"unit,omitempty"`
}

type MeterValue struct {
	Timestamp    *DateTime      `json:"timestamp"`
	SampledValue []SampledValue `json:"sampledValue"`
}
