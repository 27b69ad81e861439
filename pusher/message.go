package pusher

type Channel string
type Event string

const (
	SystemLog Channel = "sys_log"
	Stations  Channel = "stations"

	Call            Event = "call_event"
	StationEvent    Event = "station_event"
	TransactionLive Event = "transaction_event"
)
