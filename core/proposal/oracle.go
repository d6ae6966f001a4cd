package proposal

// SetFeederReq add or remove a price feeder
type SetFeederReq struct {
	Feeder string `json:"feeder"`
	OK     bool   `json:"ok"`
}
