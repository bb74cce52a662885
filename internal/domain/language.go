package domain

import "time"

// Language is a catalog entry for a learning language offered by the platform.
type Language struct {
	LanguageID string    `json:"id" dynamodbav:"language_id"`
	Code       string    `json:"code" dynamodbav:"code"`
	Name       string    `json:"name" dynamodbav:"name"`
	NativeName string    `json:"nativeName" dynamodbav:"native_name"`
	Region     string    `json:"region" dynamodbav:"region"`
	Enable     bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}
