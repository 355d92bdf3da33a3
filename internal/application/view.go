package application

import "voice-chat/internal/domain"

const (
	ViewTitle    = "TutorAI"
	ViewSubtitle = "Click the button and speak to chat with AI"

	LabelStart     = "Start Speaking"
	LabelListening = "Listening... (click to stop)"
)

type SectionKind string

const (
	SectionError      SectionKind = "error"
	SectionTranscript SectionKind = "transcript"
	SectionResponse   SectionKind = "response"
)

type Button struct {
	Label     string `json:"label"`
	Disabled  bool   `json:"disabled"`
	Listening bool   `json:"listening"`
}

type Section struct {
	Kind  SectionKind `json:"kind"`
	Title string      `json:"title,omitempty"`
	Body  string      `json:"body"`
}

// View is the presentation of a State, independent of the surface drawing it.
type View struct {
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	Button   Button    `json:"button"`
	Sections []Section `json:"sections"`
}

// Render maps state to what the user sees. Sections appear only when their
// text is non-empty, always in error, transcript, response order.
func Render(s domain.State) View {
	v := View{
		Title:    ViewTitle,
		Subtitle: ViewSubtitle,
		Sections: make([]Section, 0, 3),
	}

	if s.Listening {
		v.Button = Button{Label: LabelListening, Listening: true}
	} else {
		v.Button = Button{Label: LabelStart, Disabled: s.Loading}
	}

	if s.Error != "" {
		v.Sections = append(v.Sections, Section{Kind: SectionError, Body: s.Error})
	}
	if s.Transcript != "" {
		v.Sections = append(v.Sections, Section{Kind: SectionTranscript, Title: "You said:", Body: s.Transcript})
	}
	if s.Response != "" {
		v.Sections = append(v.Sections, Section{Kind: SectionResponse, Title: "AI Response:", Body: s.Response})
	}

	return v
}
