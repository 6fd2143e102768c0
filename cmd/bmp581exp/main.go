package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/calmh/baro/bmp581"
	"github.com/calmh/baro/i2c"
	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/all"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gobot.io/x/gobot/sysfs"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

func main() {
	busType := flag.String("bus", "sysfs", "I2C stack (sysfs, embd, periph)")
	device := flag.String("device", "/dev/i2c-1", "I2C device (sysfs)")
	busNumber := flag.Int("bus-number", 1, "I2C bus number (embd)")
	address := flag.Uint("address", uint(bmp581.AddressPrimary), "Device address (0x46 or 0x47)")
	interval := flag.Duration("interval", time.Second, "Interval between measurements")
	timeout := flag.Duration("timeout", 100*time.Millisecond, "Bus transfer timeout")
	promaddr := flag.String("prometheus", "", "Prometheus exporter address (e.g. :9120)")
	window := flag.Duration("window", time.Minute, "Averaging window for exported pressure")
	decimals := flag.Int("decimals", 2, "Rounding precision")
	buffer := flag.Bool("buffer", false, "Buffer each output line")
	odr := flag.Float64("odr", 1, "Output data rate (Hz)")
	osrP := flag.Int("osr-p", 8, "Pressure oversampling (1-128)")
	osrT := flag.Int("osr-t", 1, "Temperature oversampling (1-128)")
	iirP := flag.Int("iir-p", 3, "Pressure IIR filter coefficient (0, 1, 3, ... 127)")
	iirT := flag.Int("iir-t", 0, "Temperature IIR filter coefficient (0, 1, 3, ... 127)")
	verbose := flag.Bool("verbose", false, "Log every bus transfer")
	flag.Parse()

	rate, err := parseODR(*odr)
	if err != nil {
		log.Fatalln("odr:", err)
	}
	osr, err := parseOversampling(*osrP, *osrT)
	if err != nil {
		log.Fatalln("osr:", err)
	}
	dsp, err := parseIIR(*iirP, *iirT)
	if err != nil {
		log.Fatalln("iir:", err)
	}

	bus, err := openBus(*busType, *device, *busNumber)
	if err != nil {
		log.Fatalln("open I2C bus:", err)
	}
	if *verbose {
		bus = i2c.NewLogged(bus, log.Default())
	}
	bus = i2c.NewInstrumented(bus, prometheus.DefaultRegisterer)
	bus = i2c.NewSerial(bus, *timeout)

	opts := bmp581.DefaultOpts
	opts.Address = uint16(*address)
	dev, err := bmp581.New(bus, &opts)
	if err != nil {
		log.Fatalln("init BMP581:", err)
	}

	ctx := context.Background()
	if err := setup(ctx, dev, rate, osr, dsp); err != nil {
		log.Fatalln("init BMP581:", err)
	}
	log.Printf("%v: ODR %v, OSR %v/%v", dev, rate, osr.Pressure, osr.Temperature)

	avg := NewAvgBMP581(*window, *interval)
	if *promaddr != "" {
		go servePrometheus(*promaddr, dev, avg, *decimals)
	}

	fields := make(map[string]interface{})
	out := io.Writer(os.Stdout)
	var bw *bufio.Writer
	if *buffer {
		bw = bufio.NewWriter(out)
		out = bw
	}
	enc := json.NewEncoder(out)

	for now := range time.NewTicker(*interval).C {
		var env physic.Env
		if err := dev.Sense(ctx, &env); err != nil {
			log.Println("bmp581:", err)
			continue
		}
		avg.add(env)

		fields["when"] = now
		fields["bmp581_pressure_hpa"] = round(bmp581.Pascal(env.Pressure)/100, *decimals)
		fields["bmp581_temperature_c"] = round(bmp581.Celsius(env.Temperature), *decimals)
		if err := writeLine(enc, bw, fields); err != nil {
			log.Fatalln("write:", err)
		}
	}
}

// writeLine encodes fields as one JSON line and flushes bw, if set, so a
// buffered line is never held back until the next one.
func writeLine(enc *json.Encoder, bw *bufio.Writer, fields map[string]interface{}) error {
	if err := enc.Encode(fields); err != nil {
		return err
	}
	if bw != nil {
		return bw.Flush()
	}
	return nil
}

func openBus(kind, device string, number int) (i2c.Bus, error) {
	switch kind {
	case "sysfs":
		dev, err := sysfs.NewI2cDevice(device)
		if err != nil {
			return nil, err
		}
		return i2c.NewDeviceBus(dev), nil

	case "embd":
		if err := embd.InitI2C(); err != nil {
			return nil, err
		}
		return i2c.NewEmbdBus(embd.NewI2CBus(byte(number))), nil

	case "periph":
		if _, err := host.Init(); err != nil {
			return nil, err
		}
		bus, err := i2creg.Open(device)
		if err != nil {
			return nil, err
		}
		return i2c.NewPeriphBus(bus), nil

	default:
		return nil, errUnknownBus(kind)
	}
}

func setup(ctx context.Context, dev *bmp581.Dev, rate bmp581.OutputDataRate, osr bmp581.OSRConfig, dsp bmp581.DSPConfig) error {
	if err := dev.Initialize(ctx); err != nil {
		return err
	}
	if err := dev.ConfigureOSR(ctx, osr); err != nil {
		return err
	}
	if err := dev.ConfigureDSP(ctx, dsp); err != nil {
		return err
	}
	if err := dev.ConfigureODR(ctx, bmp581.ODRConfig{Mode: bmp581.Standby, Rate: rate}); err != nil {
		return err
	}
	eff, err := dev.ReadEffectiveOSR(ctx)
	if err != nil {
		return err
	}
	if !eff.ODRValid {
		log.Printf("Output data rate %v is too fast for the oversampling; running at %v/%v", rate, eff.Pressure, eff.Temperature)
	}
	return dev.StartMeasurements(ctx)
}

func servePrometheus(addr string, dev *bmp581.Dev, avg *AvgBMP581, decimals int) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sensors",
		Subsystem: "bmp581",
		Name:      "pressure_pascals",
	}, func() float64 {
		p, ok := dev.Pressure()
		if !ok {
			return math.NaN()
		}
		return round(bmp581.Pascal(p), decimals)
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sensors",
		Subsystem: "bmp581",
		Name:      "temperature_celsius",
	}, func() float64 {
		t, ok := dev.Temperature()
		if !ok {
			return math.NaN()
		}
		return round(bmp581.Celsius(t), decimals)
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sensors",
		Subsystem: "bmp581",
		Name:      "pressure_median_pascals",
	}, func() float64 {
		return round(avg.Pressure(), decimals)
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "sensors",
		Subsystem: "bmp581",
		Name:      "pressure_deviation_pascals",
	}, func() float64 {
		return round(avg.Deviation(), decimals)
	})

	http.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalln("prometheus:", err)
	}
}

func round(x float64, prec int) float64 {
	pow := math.Pow10(prec)
	return math.Round(x*pow) / pow
}
