package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseView(t *testing.T) {
	tests := []struct {
		in   string
		want View
	}{
		{"", InboxView()},
		{"inbox", InboxView()},
		{" Today ", TodayView()},
		{"upcoming", UpcomingView()},
		{"IMPORTANT", ImportantView()},
		{"completed", CompletedView()},
		{"project-home", ProjectView("home")},
		{"project:School", ProjectView("School")},
		{"project-", InboxView()},
		{"nonsense", InboxView()},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseView(tt.in))
		})
	}
}

func TestView_StringRoundTrip(t *testing.T) {
	views := append(FixedViews(), ProjectView("home"))
	for _, v := range views {
		assert.Equal(t, v, ParseView(v.String()))
	}
}

func TestView_ProjectID(t *testing.T) {
	assert.Equal(t, "home", ProjectView("home").ProjectID())
	assert.True(t, ProjectView("home").IsProject())
	assert.Empty(t, TodayView().ProjectID())
	assert.False(t, InboxView().IsProject())
}

func TestView_Title(t *testing.T) {
	reg := NewRegistry(DefaultProjects)
	assert.Equal(t, "Inbox", InboxView().Title(reg))
	assert.Equal(t, "Upcoming", UpcomingView().Title(reg))
	assert.Equal(t, "Home", ProjectView("home").Title(reg))
	assert.Equal(t, "Project", ProjectView("gone").Title(reg))
	assert.Equal(t, "Project", ProjectView("home").Title(nil))
}
