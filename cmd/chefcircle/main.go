package main

import (
	"log"

	"github.com/Abdelrahmanaman/chef-circle/cmd/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
