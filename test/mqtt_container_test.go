//go:build !no_containers

package test

import (
	"context"
	"encoding/json"
	"os/exec"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/navbus/navbus/core/channel"
	"github.com/navbus/navbus/core/dispatch"
	"github.com/navbus/navbus/core/units"
	"github.com/navbus/navbus/infra/mqtt"
	"github.com/navbus/navbus/test/util"
)

func TestUploaderWithMQTTContainer(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()
	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Fatalf("start mosquitto: %v", err)
	}
	defer cleanup()

	received := make(chan paho.Message, 4)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("navbus-test-sub"))
	if token := sub.Connect(); token.Wait() && token.Error() != nil {
		t.Fatalf("subscriber connect: %v", token.Error())
	}
	defer sub.Disconnect(100)
	if token := sub.Subscribe("boat/#", 1, func(_ paho.Client, m paho.Message) { received <- m }); token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}

	cli, err := mqtt.NewClient(mqtt.Config{Broker: broker, QoS: 1})
	if err != nil {
		t.Fatalf("mqtt client: %v", err)
	}
	defer cli.Disconnect()

	d := dispatch.New(dispatch.Config{}, nil)
	dispatch.PublishValue(d, channel.TWS, "calc", units.Knots(14.2))
	up := mqtt.NewUploader(cli, d, mqtt.UploaderOptions{TopicPrefix: "boat"})
	if n, err := up.PublishOnce(); err != nil || n != 1 {
		t.Fatalf("publish once: n=%d err=%v", n, err)
	}

	select {
	case m := <-received:
		if m.Topic() != "boat/TWS" {
			t.Fatalf("unexpected topic %s", m.Topic())
		}
		var msg mqtt.Message
		if err := json.Unmarshal(m.Payload(), &msg); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if msg.Source != "calc" || msg.Display == nil || *msg.Display < 14.19 || *msg.Display > 14.21 {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no telemetry message received")
	}
}
