package model

// Eligibility 一次转化资格评估的结果（临时值，不落库）
type Eligibility struct {
	Eligible      bool `json:"eligible"`
	AutoConvert   bool `json:"auto_convert"`
	ReactionCount int  `json:"reaction_count"`
	SoftThreshold int  `json:"threshold_soft"`
	HardThreshold int  `json:"threshold_strong"`
}
