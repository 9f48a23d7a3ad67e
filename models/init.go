package models

import (
	"stagesite/db"
)

func Init() {
	err := db.Instance.AutoMigrate(
		&Post{},
		&PostImage{},
		&Contact{},
		&Video{},
		&AdminUser{},
		&AdminSession{},
	)
	if err != nil {
		panic(err)
	}
}
