package intel

import (
	"strings"

	"cyguard-backend/pkg/api"
)

type Filter interface {
	Matches(alert api.IntelAlert) bool
}

type AndFilter struct {
	filters []Filter
}

func (f *AndFilter) Matches(alert api.IntelAlert) bool {
	for _, filter := range f.filters {
		if !filter.Matches(alert) {
			return false
		}
	}
	return true
}

type OrFilter struct {
	filters []Filter
}

func (f *OrFilter) Matches(alert api.IntelAlert) bool {
	for _, filter := range f.filters {
		if filter.Matches(alert) {
			return true
		}
	}
	return false
}

type NotFilter struct {
	filter Filter
}

func (f *NotFilter) Matches(alert api.IntelAlert) bool {
	return !f.filter.Matches(alert)
}

// fieldValues resolves a filter field to the alert values it compares
// against. Tags is the only multi-valued field; a filter matches when any of
// the values match.
func fieldValues(alert api.IntelAlert, field string) []string {
	switch field {
	case "id":
		return []string{alert.ID}
	case "title":
		return []string{alert.Title}
	case "summary":
		return []string{alert.Summary}
	case "date":
		return []string{alert.Date}
	case "severity":
		return []string{alert.Severity}
	case "source":
		return []string{alert.Source}
	case "link":
		return []string{alert.Link}
	case "tags":
		return alert.Tags
	default:
		return nil
	}
}

type SubstringFilter struct {
	field  string
	substr string
}

func (f *SubstringFilter) Matches(alert api.IntelAlert) bool {
	for _, value := range fieldValues(alert, f.field) {
		if strings.Contains(strings.ToLower(value), strings.ToLower(f.substr)) {
			return true
		}
	}
	return false
}

type StringEqFilter struct {
	field string
	value string
}

func (f *StringEqFilter) Matches(alert api.IntelAlert) bool {
	for _, value := range fieldValues(alert, f.field) {
		if strings.EqualFold(value, f.value) {
			return true
		}
	}
	return false
}

type StringLtFilter struct {
	field string
	value string
}

func (f *StringLtFilter) Matches(alert api.IntelAlert) bool {
	for _, value := range fieldValues(alert, f.field) {
		if value < f.value {
			return true
		}
	}
	return false
}

type StringGtFilter struct {
	field string
	value string
}

func (f *StringGtFilter) Matches(alert api.IntelAlert) bool {
	for _, value := range fieldValues(alert, f.field) {
		if value > f.value {
			return true
		}
	}
	return false
}
