// Command stockctl は銘柄カタログの取り込み・書き出し・更新通知と、オフライン検索を行う管理ツールです。
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// .env はローカル開発用。存在しなくてもよい
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
