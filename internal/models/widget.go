package models

// WidgetMaxItems is how many sessions the home-screen widget lists.
const WidgetMaxItems = 5

// WidgetItem is one line group in the widget.
type WidgetItem struct {
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Room      string `json:"room,omitempty"`
	Teacher   string `json:"teacher,omitempty"`
	Color     string `json:"color,omitempty"`
}

// WidgetView is what the widget shows for the next day.
type WidgetView struct {
	Header  string       `json:"header"`
	Day     int          `json:"day"`
	DayName string       `json:"dayName"`
	Date    string       `json:"date"`
	Items   []WidgetItem `json:"items"`
	More    int          `json:"more"`
	// MoreText is the overflow line shown under the listed items.
	MoreText string `json:"moreText,omitempty"`
	Message  string `json:"message,omitempty"`
}
