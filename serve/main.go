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
	"bufio"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof"
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
	myApp.Name = "unrand-serve"
	myApp.Usage = "stream glibc random() output over KCP(with SMUX), the target for crack"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "listen,l",
			Value: ":29900",
			Usage: "server listen address",
		},
		cli.Uint64Flag{
			Name:  "seed,s",
			Value: 1,
			Usage: "generator seed, non-zero 32-bit value",
		},
		cli.StringFlag{
			Name:  "passphrase",
			Value: "",
			Usage: "derive the seed from a passphrase instead of --seed",
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
			Value: 1024,
			Usage: "set send window size(num of packets)",
		},
		cli.IntFlag{
			Name:  "rcvwnd",
			Value: 1024,
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
			Usage: "to suppress the 'stream open/close' messages",
		},
		cli.BoolFlag{
			Name:  "pprof",
			Usage: "start profiling server on :6060",
		},
		cli.StringFlag{
			Name:  "c",
			Value: "", // when set, the referenced JSON file must exist on disk
			Usage: "config from json file, which will override the command from shell",
		},
	}
	myApp.Action = func(c *cli.Context) error {
		config := Config{}
		config.Listen = c.String("listen")
		config.Seed = c.Uint64("seed")
		config.Passphrase = c.String("passphrase")
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
		config.Pprof = c.Bool("pprof")

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

		if config.Seed > 0xFFFFFFFF {
			log.Fatal("seed must fit in 32 bits")
		}
		seed := uint32(config.Seed)
		if config.Passphrase != "" {
			seed = std.DeriveSeed(config.Passphrase)
		}
		if seed == 0 {
			log.Fatal("seed must be non-zero; the expansion degenerates on 0")
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

		if config.SmuxVer > maxSmuxVer {
			log.Fatal("unsupported smux version:", config.SmuxVer)
		}

		log.Println("version:", VERSION)
		log.Println("seed:", seed)
		log.Println("smux version:", config.SmuxVer)
		log.Println("encryption:", config.Crypt)
		log.Println("QPP:", config.QPP)
		log.Println("nodelay parameters:", config.NoDelay, config.Interval, config.Resend, config.NoCongestion)
		log.Println("sndwnd:", config.SndWnd, "rcvwnd:", config.RcvWnd)
		log.Println("compression:", !config.NoComp)
		log.Println("mtu:", config.MTU)
		log.Println("datashard:", config.DataShard, "parityshard:", config.ParityShard)
		log.Println("acknodelay:", config.AckNodelay)
		log.Println("dscp:", config.DSCP)
		log.Println("sockbuf:", config.SockBuf)
		log.Println("smuxbuf:", config.SmuxBuf)
		log.Println("streambuf:", config.StreamBuf)
		log.Println("framesize:", config.FrameSize)
		log.Println("keepalive:", config.KeepAlive)
		log.Println("snmplog:", config.SnmpLog)
		log.Println("snmpperiod:", config.SnmpPeriod)
		log.Println("quiet:", config.Quiet)
		log.Println("pprof:", config.Pprof)

		// Derive the transport key and prepare the block cipher.
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

		smuxConfig, err := std.BuildSmuxConfig(std.SmuxParams{
			Version:          config.SmuxVer,
			MaxReceiveBuffer: config.SmuxBuf,
			MaxStreamBuffer:  config.StreamBuf,
			MaxFrameSize:     config.FrameSize,
			KeepAliveSeconds: config.KeepAlive,
		})
		checkError(err)

		// Continuously export SNMP counters when requested.
		go std.SnmpLogger(config.SnmpLog, config.SnmpPeriod)

		// Optionally expose Go's net/http/pprof handlers on :6060.
		if config.Pprof {
			go http.ListenAndServe(":6060", nil)
		}

		lis, err := kcp.ListenWithOptions(config.Listen, block, config.DataShard, config.ParityShard)
		checkError(errors.Wrap(err, "kcp.ListenWithOptions"))
		log.Println("listening on:", lis.Addr())

		if err := lis.SetDSCP(config.DSCP); err != nil {
			log.Println("SetDSCP:", err)
		}
		if err := lis.SetReadBuffer(config.SockBuf); err != nil {
			log.Println("SetReadBuffer:", err)
		}
		if err := lis.SetWriteBuffer(config.SockBuf); err != nil {
			log.Println("SetWriteBuffer:", err)
		}

		for {
			conn, err := lis.AcceptKCP()
			if err != nil {
				log.Fatalf("%+v", err)
			}
			log.Println("remote address:", conn.RemoteAddr())
			conn.SetStreamMode(true)
			conn.SetWriteDelay(false)
			conn.SetNoDelay(config.NoDelay, config.Interval, config.Resend, config.NoCongestion)
			conn.SetMtu(config.MTU)
			conn.SetWindowSize(config.SndWnd, config.RcvWnd)
			conn.SetACKNoDelay(config.AckNodelay)

			go handleMux(conn, &config, seed, smuxConfig, pad)
		}
	}
	myApp.Run(os.Args)
}

// handleMux upgrades an accepted KCP connection into an smux session and
// pumps generator output into every stream the peer opens.
func handleMux(conn *kcp.UDPSession, config *Config, seed uint32, smuxConfig *smux.Config, pad *qpp.QuantumPermutationPad) {
	var mux *smux.Session
	var err error
	if config.NoComp {
		mux, err = smux.Server(conn, smuxConfig)
	} else {
		mux, err = smux.Server(std.NewCompStream(conn), smuxConfig)
	}
	if err != nil {
		log.Println(err)
		return
	}
	defer mux.Close()

	for {
		stream, err := mux.AcceptStream()
		if err != nil {
			log.Println(err)
			return
		}
		go serveStream(stream, config, seed, pad)
	}
}

// serveStream feeds an endless run of output words to one stream. Every
// stream observes its own generator from the configured seed, the way a
// freshly started target process would.
func serveStream(stream *smux.Stream, config *Config, seed uint32, pad *qpp.QuantumPermutationPad) {
	logln := func(v ...interface{}) {
		if !config.Quiet {
			log.Println(v...)
		}
	}

	defer stream.Close()
	logln("stream opened", stream.RemoteAddr(), "(", stream.ID(), ")")
	defer logln("stream closed", stream.RemoteAddr(), "(", stream.ID(), ")")

	var rw io.ReadWriteCloser = stream
	if pad != nil {
		rw = std.NewQPPPort(stream, pad, []byte(config.Key))
	}

	gen := lfsr.New(seed)
	bw := bufio.NewWriter(rw)
	ww := std.NewWordWriter(bw)
	for {
		if err := ww.WriteWord(gen.Advance()); err != nil {
			return
		}
	}
}

// checkError logs the supplied fatal error and terminates the process.
func checkError(err error) {
	if err != nil {
		log.Printf("%+v\n", err)
		os.Exit(-1)
	}
}
