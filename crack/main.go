// The MIT License (MIT)
//
// # Copyright (c) 2024 unrand
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	kcp "github.com/xtaci/kcp-go/v5"
	"github.com/xtaci/qpp"
	"github.com/xtaci/smux"

	"github.com/unrand/unrand/lfsr"
	"github.com/unrand/unrand/std"
)

// maxSmuxVer guards against negotiating unsupported smux protocol versions.
const maxSmuxVer = 2

// VERSION is populated via build flags when packaging official binaries.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		// Enable timestamps + file:line to simplify debugging self-built binaries.
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "unrand-crack"
	myApp.Usage = "reconstruct a glibc random() generator from its output"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.Uint64Flag{
			Name:  "seed,s",
			Value: 0,
			Usage: "self-test against a local generator with this non-zero seed",
		},
		cli.StringFlag{
			Name:  "passphrase",
			Value: "",
			Usage: "derive the self-test seed from a passphrase instead of --seed",
		},
		cli.StringFlag{
			Name:  "capture",
			Value: "",
			Usage: "solve from a recorded capture file instead of a live source",
		},
		cli.StringFlag{
			Name:  "remoteaddr,r",
			Value: "",
			Usage: `attack a serve instance, eg: "IP:29900"`,
		},
		cli.StringFlag{
			Name:  "record",
			Value: "",
			Usage: "tee words observed in remote mode into a capture file",
		},
		cli.IntFlag{
			Name:  "maxfeeds",
			Value: 64 * 1024,
			Usage: "give up after this many observed values",
		},
		cli.IntFlag{
			Name:  "verify",
			Value: 1000,
			Usage: "values to check against predictions after reconstruction (remote and capture modes)",
		},
		cli.StringFlag{
			Name:   "key",
			Value:  "it's a secrect",
			Usage:  "pre-shared secret between server and crack",
			EnvVar: "UNRAND_KEY",
		},
		cli.StringFlag{
			Name:  "crypt",
			Value: "aes",
			Usage: "aes, aes-128, aes-128-gcm, aes-192, salsa20, blowfish, twofish, cast5, 3des, tea, xtea, xor, sm4, none",
		},
		cli.StringFlag{
			Name:  "mode",
			Value: "fast",
			Usage: "profiles: fast3, fast2, fast, normal, manual",
		},
		cli.IntFlag{
			Name:  "mtu",
			Value: 1350,
			Usage: "set maximum transmission unit for UDP packets",
		},
		cli.IntFlag{
			Name:  "sndwnd",
			Value: 128,
			Usage: "set send window size(num of packets)",
		},
		cli.IntFlag{
			Name:  "rcvwnd",
			Value: 512,
			Usage: "set receive window size(num of packets)",
		},
		cli.IntFlag{
			Name:  "datashard,ds",
			Value: 10,
			Usage: "set reed-solomon erasure coding - datashard",
		},
		cli.IntFlag{
			Name:  "parityshard,ps",
			Value: 3,
			Usage: "set reed-solomon erasure coding - parityshard",
		},
		cli.IntFlag{
			Name:  "dscp",
			Value: 0,
			Usage: "set DSCP(6bit)",
		},
		cli.BoolFlag{
			Name:  "nocomp",
			Usage: "disable compression",
		},
		cli.BoolFlag{
			Name:   "acknodelay",
			Usage:  "flush ack immediately when a packet is received",
			Hidden: true,
		},
		cli.IntFlag{
			Name:   "nodelay",
			Value:  0,
			Hidden: true,
		},
		cli.IntFlag{
			Name:   "interval",
			Value:  50,
			Hidden: true,
		},
		cli.IntFlag{
			Name:   "resend",
			Value:  0,
			Hidden: true,
		},
		cli.IntFlag{
			Name:   "nc",
			Value:  0,
			Hidden: true,
		},
		cli.IntFlag{
			Name:  "sockbuf",
			Value: 4194304, // default socket buffer size in bytes
			Usage: "per-socket buffer in bytes",
		},
		cli.IntFlag{
			Name:  "smuxver",
			Value: 2,
			Usage: "specify smux version, available 1,2",
		},
		cli.IntFlag{
			Name:  "smuxbuf",
			Value: 4194304,
			Usage: "the overall de-mux buffer in bytes",
		},
		cli.IntFlag{
			Name:  "streambuf",
			Value: 2097152,
			Usage: "per stream receive buffer in bytes, smux v2+",
		},
		cli.IntFlag{
			Name:  "framesize",
			Value: 8192,
			Usage: "smux max frame size",
		},
		cli.IntFlag{
			Name:  "keepalive",
			Value: 10, // NAT keepalive interval in seconds
			Usage: "seconds between heartbeats",
		},
		cli.BoolFlag{
			Name:  "QPP",
			Usage: "enable Quantum Permutation Pads(QPP)",
		},
		cli.IntFlag{
			Name:  "QPPCount",
			Value: 61,
			Usage: "the prime number of pads to use for QPP: The more pads you use, the more secure the obfuscation. Each pad requires 256 bytes.",
		},
		cli.StringFlag{
			Name:  "snmplog",
			Value: "",
			Usage: "collect snmp to file, aware of timeformat in golang, like: ./snmp-20060102.log",
		},
		cli.IntFlag{
			Name:  "snmpperiod",
			Value: 60,
			Usage: "snmp collect period, in seconds",
		},
		cli.StringFlag{
			Name:  "log",
			Value: "",
			Usage: "specify a log file to output, default goes to stderr",
		},
		cli.BoolFlag{
			Name:  "quiet",
			Usage: "no effect in crack, which prints no per-connection messages",
		},
		cli.StringFlag{
			Name:  "c",
			Value: "", // when set, the referenced JSON file must exist on disk
			Usage: "config from json file, which will override the command from shell",
		},
	}
	myApp.Action = func(c *cli.Context) error {
		config := Config{}
		config.Seed = c.Uint64("seed")
		config.Passphrase = c.String("passphrase")
		config.Capture = c.String("capture")
		config.RemoteAddr = c.String("remoteaddr")
		config.Record = c.String("record")
		config.MaxFeeds = c.Int("maxfeeds")
		config.Verify = c.Int("verify")
		config.Key = c.String("key")
		config.Crypt = c.String("crypt")
		config.Mode = c.String("mode")
		config.MTU = c.Int("mtu")
		config.SndWnd = c.Int("sndwnd")
		config.RcvWnd = c.Int("rcvwnd")
		config.DataShard = c.Int("datashard")
		config.ParityShard = c.Int("parityshard")
		config.DSCP = c.Int("dscp")
		config.NoComp = c.Bool("nocomp")
		config.AckNodelay = c.Bool("acknodelay")
		config.NoDelay = c.Int("nodelay")
		config.Interval = c.Int("interval")
		config.Resend = c.Int("resend")
		config.NoCongestion = c.Int("nc")
		config.SockBuf = c.Int("sockbuf")
		config.SmuxVer = c.Int("smuxver")
		config.SmuxBuf = c.Int("smuxbuf")
		config.StreamBuf = c.Int("streambuf")
		config.FrameSize = c.Int("framesize")
		config.KeepAlive = c.Int("keepalive")
		config.QPP = c.Bool("QPP")
		config.QPPCount = c.Int("QPPCount")
		config.SnmpLog = c.String("snmplog")
		config.SnmpPeriod = c.Int("snmpperiod")
		config.Log = c.String("log")
		config.Quiet = c.Bool("quiet")

		if c.String("c") != "" {
			err := parseJSONConfig(&config, c.String("c"))
			checkError(err)
		}

		// Redirect logs when the user supplied a dedicated log file.
		if config.Log != "" {
			f, err := os.OpenFile(config.Log, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
			checkError(err)
			defer f.Close()
			log.SetOutput(f)
		}

		if config.MaxFeeds <= 0 {
			log.Fatal("maxfeeds must be greater than 0")
		}

		switch config.Mode {
		case "normal":
			config.NoDelay, config.Interval, config.Resend, config.NoCongestion = 0, 40, 2, 1
		case "fast":
			config.NoDelay, config.Interval, config.Resend, config.NoCongestion = 0, 30, 2, 1
		case "fast2":
			config.NoDelay, config.Interval, config.Resend, config.NoCongestion = 1, 20, 2, 1
		case "fast3":
			config.NoDelay, config.Interval, config.Resend, config.NoCongestion = 1, 10, 2, 1
		}

		switch {
		case config.RemoteAddr != "":
			return attackRemote(&config)
		case config.Capture != "":
			return solveCapture(&config)
		default:
			if config.Seed > 0xFFFFFFFF {
				log.Fatal("seed must fit in 32 bits")
			}
			seed := uint32(config.Seed)
			if config.Passphrase != "" {
				seed = std.DeriveSeed(config.Passphrase)
			}
			if seed == 0 {
				log.Fatal("provide a non-zero --seed, a --passphrase, a --capture file or a --remoteaddr")
			}
			return solveLocal(seed, config.MaxFeeds)
		}
	}
	checkError(myApp.Run(os.Args))
}

// solveLocal reconstructs a generator it seeded itself and prints both
// state tables for manual inspection.
func solveLocal(seed uint32, maxFeeds int) error {
	fmt.Printf("testing seed: %d\n", seed)

	src := lfsr.New(seed)
	solver := lfsr.NewSolver()

	var solved *lfsr.Generator
	steps := 0
	for solved == nil && steps < maxFeeds {
		steps++
		solved = solver.Feed(src.Advance())
	}
	if solved == nil {
		return errors.Errorf("no reconstruction after %d samples", steps)
	}

	status := "reconstructed"
	if !src.Equal(solved) {
		status = "failed to reconstruct"
	}
	fmt.Printf("%s generator from seed %d\n", status, seed)
	fmt.Printf("from %d samples\n", steps)
	printTables(src.Table(), solved.Table())

	if !src.Equal(solved) {
		os.Exit(1)
	}
	return nil
}

// printTables renders the source and solved state tables side by side,
// newest word at position 0.
func printTables(src, solved [31]uint32) {
	fmt.Printf("%3s %8s %8s\n", "pos", "source", "solved")
	for i := 0; i < 31; i++ {
		fmt.Printf("%3d %08X %08X\n", -(30 - i), src[i], solved[i])
	}
}

// solveCapture replays a recorded stream into the solver, then verifies
// the reconstruction against up to config.Verify of the words that remain
// in the recording.
func solveCapture(config *Config) error {
	cr, err := std.OpenCapture(config.Capture)
	checkError(err)
	defer cr.Close()

	solver := lfsr.NewSolver()
	var solved *lfsr.Generator
	steps := 0
	for solved == nil && steps < config.MaxFeeds {
		w, err := cr.ReadWord()
		if err == io.EOF {
			return errors.Errorf("capture exhausted after %d samples without reconstruction", steps)
		}
		checkError(err)
		steps++
		solved = solver.Feed(w)
	}
	if solved == nil {
		return errors.Errorf("no reconstruction after %d samples", steps)
	}

	fmt.Printf("reconstructed generator from %d samples\n", steps)
	printSolvedTable(solved.Table())

	verified := 0
	for verified < config.Verify {
		w, err := cr.ReadWord()
		if err == io.EOF {
			break
		}
		checkError(err)
		if got := solved.Advance(); got != w {
			color.Red("prediction diverged at recorded word %d: got %d, expected %d", steps+verified, got, w)
			os.Exit(1)
		}
		verified++
	}
	color.Green("%d recorded values matched the reconstruction", verified)

	fmt.Println("next outputs:")
	for i := 0; i < 8; i++ {
		fmt.Printf("  %d\n", solved.Advance())
	}
	return nil
}

// printSolvedTable renders a recovered state table, newest word at
// position 0.
func printSolvedTable(table [31]uint32) {
	fmt.Printf("%3s %8s\n", "pos", "solved")
	for i := 0; i < 31; i++ {
		fmt.Printf("%3d %08X\n", -(30 - i), table[i])
	}
}

// attackRemote dials a serve instance, feeds the solver off the wire and
// then checks live values against the reconstruction's predictions.
func attackRemote(config *Config) error {
	if config.SmuxVer > maxSmuxVer {
		log.Fatal("unsupported smux version:", config.SmuxVer)
	}

	log.Println("version:", VERSION)
	log.Println("remote address:", config.RemoteAddr)
	log.Println("encryption:", config.Crypt)
	log.Println("QPP:", config.QPP)
	log.Println("compression:", !config.NoComp)

	block, effectiveCrypt := std.SelectBlockCrypt(config.Crypt, std.TransportKey(config.Key))
	config.Crypt = effectiveCrypt

	var pad *qpp.QuantumPermutationPad
	if config.QPP {
		suggestions, err := std.ValidateQPPParams(config.QPPCount, config.Key)
		if err != nil {
			log.Fatal(err)
		}
		for _, msg := range suggestions {
			color.Red(msg)
		}
		pad = qpp.NewQPP([]byte(config.Key), uint16(config.QPPCount))
	}

	go std.SnmpLogger(config.SnmpLog, config.SnmpPeriod)

	stream, err := openStream(config, block)
	checkError(err)
	defer stream.Close()

	var rw io.ReadWriteCloser = stream
	if pad != nil {
		rw = std.NewQPPPort(stream, pad, []byte(config.Key))
	}

	var record *std.CaptureWriter
	if config.Record != "" {
		record, err = std.CreateCapture(config.Record)
		checkError(err)
		defer record.Close()
	}

	wr := std.NewWordReader(rw)
	readWord := func() uint32 {
		w, err := wr.ReadWord()
		checkError(errors.Wrap(err, "read word"))
		if record != nil {
			checkError(record.WriteWord(w))
		}
		return w
	}

	solver := lfsr.NewSolver()
	var solved *lfsr.Generator
	steps := 0
	for solved == nil && steps < config.MaxFeeds {
		steps++
		solved = solver.Feed(readWord())
	}
	if solved == nil {
		return errors.Errorf("no reconstruction after %d samples", steps)
	}

	log.Printf("reconstructed remote generator from %d samples", steps)
	printSolvedTable(solved.Table())

	for i := 0; i < config.Verify; i++ {
		want := readWord()
		if got := solved.Advance(); got != want {
			color.Red("prediction diverged at live value %d: got %d, expected %d", i, got, want)
			os.Exit(1)
		}
	}
	color.Green("%d live values matched the reconstruction", config.Verify)
	return nil
}

// openStream establishes the KCP connection with all tunables applied and
// opens a single smux stream over it.
func openStream(config *Config, block kcp.BlockCrypt) (*smux.Stream, error) {
	kcpconn, err := kcp.DialWithOptions(config.RemoteAddr, block, config.DataShard, config.ParityShard)
	if err != nil {
		return nil, errors.Wrap(err, "kcp.DialWithOptions")
	}
	kcpconn.SetStreamMode(true)
	kcpconn.SetWriteDelay(false)
	kcpconn.SetNoDelay(config.NoDelay, config.Interval, config.Resend, config.NoCongestion)
	kcpconn.SetWindowSize(config.SndWnd, config.RcvWnd)
	kcpconn.SetMtu(config.MTU)
	kcpconn.SetACKNoDelay(config.AckNodelay)

	if err := kcpconn.SetDSCP(config.DSCP); err != nil {
		log.Println("SetDSCP:", err)
	}
	if err := kcpconn.SetReadBuffer(config.SockBuf); err != nil {
		log.Println("SetReadBuffer:", err)
	}
	if err := kcpconn.SetWriteBuffer(config.SockBuf); err != nil {
		log.Println("SetWriteBuffer:", err)
	}

	smuxConfig, err := std.BuildSmuxConfig(std.SmuxParams{
		Version:          config.SmuxVer,
		MaxReceiveBuffer: config.SmuxBuf,
		MaxStreamBuffer:  config.StreamBuf,
		MaxFrameSize:     config.FrameSize,
		KeepAliveSeconds: config.KeepAlive,
	})
	if err != nil {
		return nil, err
	}

	var session *smux.Session
	if config.NoComp {
		session, err = smux.Client(kcpconn, smuxConfig)
	} else {
		session, err = smux.Client(std.NewCompStream(kcpconn), smuxConfig)
	}
	if err != nil {
		return nil, errors.Wrap(err, "smux.Client")
	}

	stream, err := session.OpenStream()
	if err != nil {
		return nil, errors.Wrap(err, "session.OpenStream")
	}
	return stream, nil
}

// checkError logs the supplied fatal error and terminates the process.
func checkError(err error) {
	if err != nil {
		log.Printf("%+v\n", err)
		os.Exit(-1)
	}
}
