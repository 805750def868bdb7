package models

import (
	"gorm.io/gorm"
)

type Seminar struct {
	gorm.Model
	Name     string `json:"name" gorm:"index"`
	Capacity int    `json:"capacity"`
	Count    int    `json:"count"`
	Time     string `json:"time"` // "HH:MM"
	Online   bool   `json:"online" gorm:"default:true"`
}
