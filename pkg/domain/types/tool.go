package types

import "github.com/m-mizutani/goerr/v2"

// ToolName identifies a tool in the closed registry
type ToolName string

const (
	ToolCheckLegalSize    ToolName = "check_legal_size"
	ToolGetFishingWeather ToolName = "get_fishing_weather"
)

// AllToolNames lists every registered tool in a fixed order
func AllToolNames() []ToolName {
	return []ToolName{ToolCheckLegalSize, ToolGetFishingWeather}
}

// Validate checks if the ToolName refers to a registered tool
func (n ToolName) Validate() error {
	switch n {
	case ToolCheckLegalSize, ToolGetFishingWeather:
		return nil
	}
	return goerr.New("unknown tool", goerr.V("tool", n))
}

// String returns the string representation of ToolName
func (n ToolName) String() string {
	return string(n)
}
