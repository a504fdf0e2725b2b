package main

import (
	"flag"
	"fmt"
	"os"

	"recolector/internal/config"
	"recolector/internal/files"
)

func main() {
	configPath := flag.String("config", "", "config file")
	out := flag.String("out", "", "key file, defaults to session.master_key_file")
	flag.Parse()

	keyFile := *out
	if keyFile == "" {
		cfg, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		keyFile = cfg.Session.MasterKeyFile
	}
	if err := files.WriteMasterKey(keyFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Master key written to %s\n", keyFile)
}
