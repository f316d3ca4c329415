package service

import "github.com/cwrk-planet/watch-together/internal/domain"

const (
	EventRoomCreated        = "RoomCreated"
	EventInitialize         = "Initialize"
	EventVideoChanged       = "VideoChanged"
	EventPlayPause          = "PlayPause"
	EventSeek               = "Seek"
	EventParticipantsUpdate = "ParticipantsUpdate"
	EventReceiveMessage     = "ReceiveMessage"
)

type RoomCreatedPayload struct {
	RoomID     string `json:"roomId"`
	AccessCode string `json:"accessCode"`
}

type InitializePayload struct {
	RoomID       string               `json:"roomId"`
	VideoID      string               `json:"videoId"`
	VideoURL     string               `json:"videoUrl"`
	VideoTitle   string               `json:"videoTitle"`
	InitialTime  float64              `json:"initialTime"`
	IsPlaying    bool                 `json:"isPlaying"`
	Countdown    *float64             `json:"countdown,omitempty"`
	Participants []domain.Participant `json:"participants"`
}

type VideoChangedPayload struct {
	VideoID    string `json:"videoId"`
	VideoURL   string `json:"videoUrl"`
	VideoTitle string `json:"videoTitle"`
}

type PlayPausePayload struct {
	IsPlaying bool    `json:"isPlaying"`
	Time      float64 `json:"time"`
}

type SeekPayload struct {
	Time float64 `json:"time"`
}

type ParticipantsUpdatePayload struct {
	Participants []domain.Participant `json:"participants"`
	Message      domain.ChatMessage   `json:"message"`
}

func initializeFrom(s domain.Snapshot) InitializePayload {
	return InitializePayload{
		RoomID:       s.RoomID,
		VideoID:      s.Video.ID,
		VideoURL:     s.Video.Path,
		VideoTitle:   s.Video.Title,
		InitialTime:  s.Time,
		IsPlaying:    s.IsPlaying,
		Countdown:    s.Countdown,
		Participants: s.Participants,
	}
}

func videoChangedFrom(v domain.Video) VideoChangedPayload {
	return VideoChangedPayload{
		VideoID:    v.ID,
		VideoURL:   v.Path,
		VideoTitle: v.Title,
	}
}
