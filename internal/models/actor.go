package models

import (
	"encoding/json"
	"strconv"

	"gorm.io/datatypes"
)

// Actor - кто выполнил действие. Хранится в Folder.CreatedBy как {"id":..,"type":..}
type Actor struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

func (a Actor) String() string {
	return a.Type + ":" + strconv.FormatInt(a.ID, 10)
}

// JSON сериализует актора для колонки created_by
func (a *Actor) JSON() datatypes.JSON {
	if a == nil {
		return nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
