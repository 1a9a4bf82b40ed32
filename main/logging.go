package main

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ricochet2200/go-disk-usage/du"
	log "github.com/sirupsen/logrus"
)

const debugLogFile = "imunode.log"

var (
	debugLogf     string
	logFileHandle *os.File
)

func getRotatedLogFiles() []string {
	entries, err := os.ReadDir(globalSettings.LogDir)
	logs := make([]string, 0)
	if err != nil {
		return logs
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), debugLogFile+".") {
			logs = append(logs, filepath.Join(globalSettings.LogDir, e.Name()))
		}
	}
	sort.Strings(logs)
	return logs
}

func rotateLogs() {
	logs := getRotatedLogFiles()

	// Bump each numeric suffix, dropping anything past .9.
	for i := len(logs) - 1; i >= 0; i-- {
		parts := strings.Split(logs[i], ".")
		logNum, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			continue
		}
		if logNum == 9 {
			os.Remove(logs[i])
		} else {
			os.Rename(logs[i], filepath.Join(globalSettings.LogDir, debugLogFile+"."+strconv.Itoa(logNum+1)))
		}
	}

	os.Rename(debugLogf, debugLogf+".1")
	openLogFile()
}

func deleteOldestLog() int64 {
	logs := getRotatedLogFiles()
	if len(logs) == 0 {
		return 0
	}
	oldest := logs[len(logs)-1]
	stat, err := os.Stat(oldest)
	if err != nil {
		return 0
	}
	if err := os.Remove(oldest); err != nil {
		return 0
	}
	return stat.Size()
}

func logFileWatcher() {
	for {
		stat, err := os.Stat(debugLogf)
		if err == nil && stat.Size() > 10*1024*1024 {
			rotateLogs()
		}

		usage := du.NewDiskUsage(globalSettings.LogDir)
		freeBytes := int64(usage.Free())
		for freeBytes < 50*1024*1024 { // leave 50mb free
			deleted := deleteOldestLog()
			if deleted == 0 {
				break
			}
			freeBytes += deleted
		}

		time.Sleep(30 * time.Second)
	}
}

func openLogFile() {
	oldFp := logFileHandle
	debugLogf = filepath.Join(globalSettings.LogDir, debugLogFile)
	fp, err := os.OpenFile(debugLogf, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Errorf("logging: failed to open %s: %v", debugLogf, err)
	} else {
		logFileHandle = fp
		log.SetOutput(io.MultiWriter(fp, os.Stdout))

		// Crash dumps go to the log as well.
		syscall.Dup3(int(fp.Fd()), 2, 0)
	}
	if oldFp != nil {
		oldFp.Close()
	}
}

func initLogging() {
	if err := os.MkdirAll(globalSettings.LogDir, 0755); err != nil {
		log.Warnf("logging: couldn't create %s, logging to stdout only: %v", globalSettings.LogDir, err)
		return
	}
	openLogFile()
	go logFileWatcher()
}
