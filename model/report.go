package model

import "time"

type RenderReport struct {
	ID         string    `json:"id" dynamodbav:"PK"`
	Source     string    `json:"source" dynamodbav:"Source"`
	Output     string    `json:"output" dynamodbav:"Output"`
	SampleRate uint32    `json:"sample_rate" dynamodbav:"SampleRate"`
	BlockSize  uint32    `json:"block_size" dynamodbav:"BlockSize"`
	NotesIn    int       `json:"notes_in" dynamodbav:"NotesIn"`
	NotesOut   int       `json:"notes_out" dynamodbav:"NotesOut"`
	Chords     int       `json:"chords" dynamodbav:"Chords"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"CreatedAt"`
}
