package main

import (
	"github.com/sirupsen/logrus"

	"moments_api/internal/transport/http"
)

func main() {
	if err := http.Run(); err != nil {
		logrus.Fatalf("Server failed: %v", err)
	}
}
