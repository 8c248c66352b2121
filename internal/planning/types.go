// Package planning turns crisis context into resolution options and a
// recommendation.
//
// Both the generator and the selector call the text-generation
// collaborator and parse JSON out of its free-form output. Neither
// trusts that output: every parse has a deterministic fallback, so the
// workflow always ends up with options and a recommendation even when
// the model returns garbage or the call fails outright.
package planning

import (
	"github.com/fyrsmithlabs/crisisd/internal/costing"
)

// RiskLevel classifies an option's execution risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Rank maps risk to a comparable number: low=1, medium=2, high=3.
// Unknown levels rank as medium.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskHigh:
		return 3
	default:
		return 2
	}
}

// Known reports whether r is one of the three defined levels.
func (r RiskLevel) Known() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Option is one candidate resolution for a crisis.
type Option struct {
	// Number is the 1-based sequence number, unique within a workflow.
	Number int `json:"option_number"`

	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DurationDays int       `json:"duration_days"`
	Risk         RiskLevel `json:"risk_level"`
	Pros         []string  `json:"pros"`
	Cons         []string  `json:"cons"`

	// Cost is attached once by the generator and frozen thereafter.
	Cost costing.Breakdown `json:"cost_analysis"`
}

// defaultOptions are the built-in fallback used when generation fails
// or returns unparseable output. They span the three risk levels.
func defaultOptions() []Option {
	return []Option{
		{
			Number:       1,
			Title:        "Extend current dock stay",
			Description:  "Keep vessel in Dock 1, extend allocation",
			DurationDays: 20,
			Risk:         RiskLow,
			Pros:         []string{"Controlled environment", "No vessel movement"},
			Cons:         []string{"Blocks dock for other vessels"},
		},
		{
			Number:       2,
			Title:        "External heavy lift at anchorage",
			Description:  "Use external contractor for repairs",
			DurationDays: 15,
			Risk:         RiskHigh,
			Pros:         []string{"Frees up dock"},
			Cons:         []string{"Weather dependent", "Higher risk"},
		},
		{
			Number:       3,
			Title:        "Refer to external shipyard",
			Description:  "Transfer to another facility",
			DurationDays: 25,
			Risk:         RiskMedium,
			Pros:         []string{"Not our problem"},
			Cons:         []string{"Logistical nightmare", "Customer dissatisfaction"},
		},
	}
}
