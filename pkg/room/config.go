package room

import (
	"time"

	"github.com/spf13/viper"
)

// 配置键，均可通过 viper 覆盖
const (
	cfgJokerCount    = "room.joker_count"     // 加入牌堆的王的数量
	cfgSubmitRate    = "room.submit_rate"     // 每个玩家每秒允许的提交次数
	cfgAgentTimeout  = "room.agent_timeout"   // 托管决策的超时时间
	cfgAgentPoolSize = "room.agent_pool_size" // 托管决策工作池的大小
)

func init() {
	viper.SetDefault(cfgJokerCount, 2)
	viper.SetDefault(cfgSubmitRate, 5)
	viper.SetDefault(cfgAgentTimeout, 3*time.Second)
	viper.SetDefault(cfgAgentPoolSize, 32)
}

func jokerCount() int {
	return viper.GetInt(cfgJokerCount)
}

func submitRate() int {
	return viper.GetInt(cfgSubmitRate)
}

func agentTimeout() time.Duration {
	return viper.GetDuration(cfgAgentTimeout)
}

func agentPoolSize() int {
	return viper.GetInt(cfgAgentPoolSize)
}
