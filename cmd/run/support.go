package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"math"
	"math/big"
	"os"
	"os/signal"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet"
	"github.com/zintix-labs/autobet/games"
	"github.com/zintix-labs/autobet/setting"
	"github.com/zintix-labs/autobet/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	game      string
	preset    string
	cfgFile   string
	params    string
	worker    int
	player    int
	balance   string
	seed      int64
	output    string
	pprofmode string
}

func bindVar() {
	flag.StringVar(&cfg.game, "game", "dice", "target game name")
	flag.StringVar(&cfg.preset, "preset", "martingale", "session preset name")
	flag.StringVar(&cfg.cfgFile, "config", "", "yaml or json session config file (overrides -preset)")
	flag.StringVar(&cfg.params, "params", "", "game params: k=v,k2=v2")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers")
	flag.IntVar(&cfg.player, "player", 1, "number of players")
	flag.StringVar(&cfg.balance, "balance", "1000", "initial balance per player")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.StringVar(&cfg.output, "o", "table", "output: table|json|yaml")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()

	// given seed illeagel -> default seed
	if cfg.seed < 1 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			log.Fatal(err)
		}
		cfg.seed = seed.Int64()
	}
}

// 這裡解析並執行模擬器
func executeSimulator() {
	bal := cfg.valid()

	lab, err := autobet.NewDefaultLab()
	if err != nil {
		log.Fatal(err)
	}
	sc, err := cfg.sessionConfig(lab)
	if err != nil {
		log.Fatal(err)
	}
	p, err := games.ParseParams(cfg.params)
	if err != nil {
		log.Fatal(err)
	}
	s, err := lab.NewSimulatorWithSeed(cfg.game, p, sc, cfg.seed)
	if err != nil {
		log.Fatal(err)
	}
	// 至此確保可執行
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	green := "\033[1;32m"
	reset := "\033[0m"
	pr := message.NewPrinter(language.English)
	table := cfg.output == "table"
	if table {
		pr.Printf("%s[WORKERS:%d] [GAME:%s] [SESSION:%s] [PLAYERS:%d BALANCE:%s SEED:%d]%s\n",
			green, cfg.worker, s.GameName, sc.Name, cfg.player, bal.String(), s.Seed(), reset)
	}
	rep, used, err := s.SimPlayers(ctx, cfg.worker, cfg.player, bal, table)
	if err != nil {
		log.Fatal(err)
	}

	switch cfg.output {
	case "json":
		err = rep.WriteWith(os.Stdout, &stats.JsonBatchReportRender{})
	case "yaml":
		err = rep.WriteWith(os.Stdout, &stats.YAMLBatchReportRender{})
	default:
		if cfg.player == 1 {
			fmt.Print(stats.SessionTable(s.GameName+" / "+sc.Name, rep.Results[0]))
			return
		}
		rep.StdOut(os.Stdout, used)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// sessionConfig 優先讀 -config 檔，否則取預設組
func (cfg *config) sessionConfig(lab *autobet.Lab) (setting.SessionConfig, error) {
	if cfg.cfgFile == "" {
		return lab.Preset(cfg.preset)
	}
	b, err := os.ReadFile(cfg.cfgFile)
	if err != nil {
		return setting.SessionConfig{}, err
	}
	if strings.HasSuffix(cfg.cfgFile, ".json") {
		sc, err := setting.GetSessionConfigByJSON(b)
		if err != nil {
			return setting.SessionConfig{}, err
		}
		return *sc, nil
	}
	sc, err := setting.GetSessionConfigByYAML(b)
	if err != nil {
		return setting.SessionConfig{}, err
	}
	return *sc, nil
}

func (cfg *config) valid() decimal.Decimal {
	p := message.NewPrinter(language.English)

	// 工作協程檢查(併發數)
	if cfg.worker < 1 {
		log.Fatal("value err : workers must > 0")
	}

	// 玩家數量 > 0
	if cfg.player < 1 {
		log.Fatal("value err : player must > 0")
	}
	// 玩家數量太多 resize
	if cfg.player > 100000 {
		p.Printf("too much players: %d resized to 100k players\n", cfg.player)
		cfg.player = 100000
	}

	bal, err := decimal.NewFromString(cfg.balance)
	if err != nil || !bal.IsPositive() {
		log.Fatal("value err : balance must > 0")
	}

	switch cfg.output {
	case "table", "json", "yaml":
	default:
		log.Fatalf("value err : unknown output %q", cfg.output)
	}
	return bal
}
