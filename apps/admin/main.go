package main

import (
	"log"
	"os"

	"github.com/trezcool/masomo-studio/core"
	"github.com/trezcool/masomo-studio/core/content"
)

func main() {
	logger := log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.LoadConfig(core.Getwd())
	if err != nil {
		logger.Fatal(err)
	}
	format, err := content.ParseFormat(conf.Codec.DefaultFormat)
	if err != nil {
		logger.Fatal(err)
	}

	// start CLI
	cli := commandLine{
		in:            os.Stdin,
		out:           os.Stdout,
		stdinFd:       stdinFd(),
		defaultFormat: format,
		maxPayload:    conf.Codec.MaxPayload,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
