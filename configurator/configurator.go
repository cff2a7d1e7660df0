package configurator

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/spf13/viper"

	. "github.com/VolteraInc/gerber-plotter/gerberbasetypes"
	"github.com/VolteraInc/gerber-plotter/plotter"
)

const (
	CfgCommonPrintMemoryInfo string = "common.PrintMemoryInfo"
	CfgCommonPrintStatistic  string = "common.PrintStatistic"

	CfgPlotterUnits         string = "plotter.Units"
	CfgPlotterBackupUnits   string = "plotter.BackupUnits"
	CfgPlotterNota          string = "plotter.Nota"
	CfgPlotterBackupNota    string = "plotter.BackupNota"
	CfgPlotterOptimizePaths string = "plotter.OptimizePaths"
	CfgPlotterPlotAsOutline string = "plotter.PlotAsOutline"
	CfgPlotterEpsilon       string = "plotter.Epsilon"

	CfgOutputFile string = "output.File"
)

func SetDefaults(v *viper.Viper) {
	v.SetConfigName("config") // no need to include file extension
	v.AddConfigPath(".")      // set the path of your config file
	v.SetConfigType("toml")

	// diagnostic messages
	v.SetDefault(CfgCommonPrintMemoryInfo, false)
	v.SetDefault(CfgCommonPrintStatistic, true)

	// empty units and notations are taken from the command stream,
	// backups fall back to inch and absolute
	v.SetDefault(CfgPlotterUnits, "")
	v.SetDefault(CfgPlotterBackupUnits, "")
	v.SetDefault(CfgPlotterNota, "")
	v.SetDefault(CfgPlotterBackupNota, "")
	v.SetDefault(CfgPlotterOptimizePaths, false)
	v.SetDefault(CfgPlotterPlotAsOutline, false)
	v.SetDefault(CfgPlotterEpsilon, plotter.DefaultEpsilon)

	// empty means standard output
	v.SetDefault(CfgOutputFile, "")
}

func ProcessConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("configuration file error, using defaults: %w", err)
	}
	return nil
}

// PlotterOptions reads the plotter options from the configuration
func PlotterOptions(v *viper.Viper) (plotter.Options, error) {
	var retVal plotter.Options
	var err error
	if retVal.Units, err = units(v, CfgPlotterUnits); err != nil {
		return retVal, err
	}
	if retVal.BackupUnits, err = units(v, CfgPlotterBackupUnits); err != nil {
		return retVal, err
	}
	if retVal.Nota, err = notation(v, CfgPlotterNota); err != nil {
		return retVal, err
	}
	if retVal.BackupNota, err = notation(v, CfgPlotterBackupNota); err != nil {
		return retVal, err
	}
	retVal.OptimizePaths = v.GetBool(CfgPlotterOptimizePaths)
	retVal.PlotAsOutline = v.GetBool(CfgPlotterPlotAsOutline)
	retVal.Epsilon = v.GetFloat64(CfgPlotterEpsilon)
	if retVal.Epsilon < 0 {
		return retVal, fmt.Errorf("%s: %w: %v", CfgPlotterEpsilon, plotter.ErrBadOption, retVal.Epsilon)
	}
	return retVal, nil
}

func units(v *viper.Viper, key string) (Units, error) {
	s := v.GetString(key)
	if len(s) == 0 {
		return 0, nil
	}
	retVal, err := ParseUnits(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return retVal, nil
}

func notation(v *viper.Viper, key string) (Notation, error) {
	s := v.GetString(key)
	if len(s) == 0 {
		return 0, nil
	}
	retVal, err := ParseNotation(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return retVal, nil
}

func DiagnosticAllCfgPrint(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		glog.Infoln(key, ":", v.Get(key))
	}
}
