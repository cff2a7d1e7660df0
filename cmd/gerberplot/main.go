// gerberplot reads the command records of a parsed Gerber file as JSON lines and
// writes the drawing records as JSON lines.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/viper"

	"github.com/VolteraInc/gerber-plotter/configurator"
	"github.com/VolteraInc/gerber-plotter/plotter"
)

// configuration base
var viperConfig *viper.Viper

func main() {
	var sourceFileName, outFileName string
	flag.StringVar(&sourceFileName, "i", "", "input file, standard input if empty")
	flag.StringVar(&outFileName, "o", "", "output file, overrides "+configurator.CfgOutputFile)
	flag.Parse()
	defer glog.Flush()

	glog.Infoln(returnAppInfo())

	viperConfig = viper.New()
	configurator.SetDefaults(viperConfig)
	if cfgFileError := configurator.ProcessConfigFile(viperConfig); cfgFileError != nil {
		glog.Infoln(cfgFileError)
	}
	if glog.V(2) {
		configurator.DiagnosticAllCfgPrint(viperConfig)
	}
	if len(outFileName) == 0 {
		outFileName = viperConfig.GetString(configurator.CfgOutputFile)
	}

	timeStamp := time.Now()
	if err := run(viperConfig, sourceFileName, outFileName, timeStamp); err != nil {
		glog.Errorln(err)
		glog.Flush()
		os.Exit(1)
	}
}

func run(v *viper.Viper, sourceFileName, outFileName string, timeStamp time.Time) error {
	opts, err := configurator.PlotterOptions(v)
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if len(sourceFileName) != 0 {
		inFile, err := os.Open(sourceFileName)
		if err != nil {
			return err
		}
		defer inFile.Close()
		in = inFile
		glog.Infoln("input file:", sourceFileName)
	}

	var out io.Writer = os.Stdout
	if len(outFileName) != 0 {
		outFile, err := os.Create(outFileName)
		if err != nil {
			return err
		}
		defer outFile.Close()
		out = outFile
	}

	printMemUsage(v, "Memory usage before plotting:")
	stat, err := plot(opts, NewDecoder(in), out)
	if err != nil {
		return err
	}
	timeInfo(timeStamp)
	printMemUsage(v, "Memory usage after plotting:")

	if v.GetBool(configurator.CfgCommonPrintStatistic) {
		glog.Infoln("The plotter has processed", stat.Commands, "commands,", stat.Ops, "operations")
		glog.Infoln("The plotter has emitted", stat.Strokes, "strokes,", stat.Fills, "fills,",
			stat.Pads, "pads of", stat.Shapes, "shapes and", stat.Layers, "layers")
	}
	if len(outFileName) != 0 {
		glog.Infoln("Drawing records are saved to the file", outFileName)
	}
	return nil
}

// plot feeds every command to a new plotter and writes its records
func plot(opts plotter.Options, dec *Decoder, out io.Writer) (plotter.Statistic, error) {
	enc := NewEncoder(out)
	p, err := plotter.New(opts, enc, plotter.WithReporter(plotter.LogReporter{}))
	if err != nil {
		return plotter.Statistic{}, err
	}
	for {
		cmd, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return p.Statistic(), err
		}
		p.Write(cmd)
	}
	p.Flush()
	diag := p.Diagnostics()
	glog.V(1).Infoln(len(diag.Warnings), "warnings,", len(diag.Faults), "faults")
	return p.Statistic(), enc.Flush()
}

func returnAppInfo() string {
	return "gerberplot: Gerber command stream plotter, " + runtime.Version()
}

func printMemUsage(v *viper.Viper, title string) {
	if !v.GetBool(configurator.CfgCommonPrintMemoryInfo) {
		return
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	glog.Infoln(title)
	glog.Infof("Alloc = %v MiB\tTotalAlloc = %v MiB\tSys = %v MiB\tNumGC = %v\n",
		bToMb(m.Alloc), bToMb(m.TotalAlloc), bToMb(m.Sys), m.NumGC)
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

func timeInfo(t time.Time) {
	glog.Infoln(fmt.Sprintf("%s %v", "Time elapsed:", time.Since(t)))
}
