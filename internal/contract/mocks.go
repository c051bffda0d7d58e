package contract

import (
	"context"

	"github.com/huangsam/calheat/schema"
	"github.com/stretchr/testify/mock"
)

// MockSeriesLoader is a mock implementation of SeriesLoader for testing.
type MockSeriesLoader struct {
	mock.Mock
}

var _ SeriesLoader = &MockSeriesLoader{} // Compile-time check

// LoadSeries implements the SeriesLoader interface.
func (m *MockSeriesLoader) LoadSeries(ctx context.Context, paths []string) ([]schema.Series, error) {
	ret := m.Called(ctx, paths)
	series, _ := ret.Get(0).([]schema.Series)
	return series, ret.Error(1)
}

// MockColorLookup is a mock implementation of ColorLookup for testing.
type MockColorLookup struct {
	mock.Mock
}

var _ ColorLookup = &MockColorLookup{} // Compile-time check

// ShadeColor implements the ColorLookup interface.
func (m *MockColorLookup) ShadeColor(shade schema.Shade, hue schema.Hue) string {
	ret := m.Called(shade, hue)
	return ret.String(0)
}
