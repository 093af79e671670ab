package battle

// Status is the major status condition of a combatant. Only one applies at a time.
type Status string

const (
	StatusNone      Status = ""
	StatusBurn      Status = "burn"
	StatusFreeze    Status = "freeze"
	StatusParalysis Status = "paralysis"
	StatusPoison    Status = "poison"
	StatusToxic     Status = "toxic"
	StatusSleep     Status = "sleep"
)

// Valid reports whether the status is a known condition.
func (s Status) Valid() bool {
	switch s {
	case StatusNone, StatusBurn, StatusFreeze, StatusParalysis, StatusPoison, StatusToxic, StatusSleep:
		return true
	}
	return false
}
